package cmdpipe

import "testing"

func TestRedirectDebugTokens(t *testing.T) {
	cases := []struct {
		r    Redirect
		want string
	}{
		{Redirect{Kind: FileToStdin, Path: "in.txt"}, "< in.txt"},
		{Redirect{Kind: StdoutToStderr}, ">&2"},
		{Redirect{Kind: StderrToStdout}, "2>&1"},
		{Redirect{Kind: StdoutToFile, Path: "out.txt"}, "1> out.txt"},
		{Redirect{Kind: StdoutToFile, Path: "out.txt", Append: true}, "1>> out.txt"},
		{Redirect{Kind: StderrToFile, Path: "err.txt"}, "2> err.txt"},
		{Redirect{Kind: StderrToFile, Path: "err.txt", Append: true}, "2>> err.txt"},
	}
	for _, c := range cases {
		if got := c.r.String(); got != c.want {
			t.Errorf("Redirect{%v}.String() = %q, want %q", c.r.Kind, got, c.want)
		}
	}
}

func TestPlanRedirectsLastWinsOnSameTargetTwice(t *testing.T) {
	dir := t.TempDir()
	first := dir + "/first.txt"
	second := dir + "/second.txt"

	plan, err := planRedirects([]Redirect{
		{Kind: StdoutToFile, Path: first},
		{Kind: StdoutToFile, Path: second},
	})
	if err != nil {
		t.Fatalf("planRedirects: %v", err)
	}
	defer plan.closeAll()

	if plan.stdout == nil || plan.stdout.Name() != second {
		t.Fatalf("stdout target = %v, want %s (last redirect wins)", plan.stdout, second)
	}
}

func TestPlanRedirectsFailsOnMissingStdinFile(t *testing.T) {
	dir := t.TempDir()
	ok := dir + "/ok.txt"

	_, err := planRedirects([]Redirect{
		{Kind: StdoutToFile, Path: ok},
		{Kind: FileToStdin, Path: dir + "/does-not-exist.txt"},
	})
	if err == nil {
		t.Fatal("expected an error opening a nonexistent stdin file")
	}
}
