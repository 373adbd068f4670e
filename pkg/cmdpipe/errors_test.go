package cmdpipe

import (
	"errors"
	"testing"
)

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Debug: `["false"]`, Code: 1}
	want := `["false"] exited with error; status code: 1`
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestSignalErrorMessage(t *testing.T) {
	err := &SignalError{Debug: `["sleep", "10"]`, Signal: "killed"}
	want := `["sleep", "10"] exited with error; terminated by killed`
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestBuiltinErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := &BuiltinError{Debug: `["mybuiltin"]`, Err: inner}

	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to see through BuiltinError to its wrapped cause")
	}
	want := `["mybuiltin"]: boom`
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
