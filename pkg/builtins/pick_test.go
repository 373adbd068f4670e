package builtins

import "testing"

func TestSplitNonEmptyLines(t *testing.T) {
	got := splitNonEmptyLines("a\n\nb\nc\n")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
