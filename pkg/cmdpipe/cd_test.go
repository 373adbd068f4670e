package cmdpipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCdMissingOperand(t *testing.T) {
	g := NewGroup().Add(NewPipeline().Pipe(NewStage().AddArg("cd")), nil)
	err := g.RunStatus()
	if !errors.Is(err, ErrMissingOperand) {
		t.Fatalf("got %v, want ErrMissingOperand", err)
	}
}

func TestCdTooManyOperands(t *testing.T) {
	g := NewGroup().Add(NewPipeline().Pipe(NewStage().AddArgs("cd", "a", "b")), nil)
	err := g.RunStatus()
	if !errors.Is(err, ErrTooManyOperands) {
		t.Fatalf("got %v, want ErrTooManyOperands", err)
	}
}

func TestCdTargetNotADirectory(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "notadir")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	g := NewGroup().Add(NewPipeline().Pipe(NewStage().AddArgs("cd", f.Name())), nil)
	if err := g.RunStatus(); !errors.Is(err, ErrNotADirectory) {
		t.Fatalf("got %v, want ErrNotADirectory", err)
	}
}

func TestCdRelativeTargetResolvedAgainstCurrentDir(t *testing.T) {
	base := t.TempDir()
	sub := filepath.Join(base, "child")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	g := NewGroup()
	g.Add(NewPipeline().Pipe(NewStage().AddArgs("cd", base)), nil)
	g.Add(NewPipeline().Pipe(NewStage().AddArgs("cd", "child")), nil)
	g.Add(NewPipeline().Pipe(NewStage().AddArg("pwd")), nil)

	out, err := g.RunString()
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	resolved, _ := filepath.EvalSymlinks(sub)
	if out != sub && out != resolved {
		t.Fatalf("pwd = %q, want %q", out, sub)
	}
}
