package cmdpipe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runOutput(t *testing.T, p *Pipeline) string {
	t.Helper()
	g := NewGroup().Add(p, nil)
	s, err := g.RunString()
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	return s
}

func TestPipedExternalCommands(t *testing.T) {
	p := NewPipeline().
		Pipe(NewStage().AddArgs("echo", "rust")).
		Pipe(NewStage().AddArgs("wc", "-c"))

	got := strings.TrimSpace(runOutput(t, p))
	if got != "5" {
		t.Fatalf("wc -c of %q = %q, want %q", "rust", got, "5")
	}
}

func TestPipedBuiltinStage(t *testing.T) {
	Register("upper", func(env *Env) error {
		env.WriteString(strings.ToUpper(string(env.Stdin())))
		return nil
	})

	p := NewPipeline().
		Pipe(NewStage().AddArgs("echo", "-n", "rust")).
		Pipe(NewStage().AddArg("upper"))

	got := runOutput(t, p)
	if got != "RUST" {
		t.Fatalf("got %q, want %q", got, "RUST")
	}
}

func TestStdoutRedirectToFileThenCat(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	write := NewPipeline().Pipe(
		NewStage().AddArgs("echo", "hello").
			AddRedirect(Redirect{Kind: StdoutToFile, Path: out}),
	)
	if err := NewGroup().Add(write, nil).RunStatus(); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}

	read := NewPipeline().Pipe(NewStage().AddArgs("cat", out))
	got := runOutput(t, read)
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestTrailingNewlineStrippedOnce(t *testing.T) {
	p := NewPipeline().Pipe(NewStage().AddArgs("printf", "a\n\n"))
	got := runOutput(t, p)
	if got != "a\n" {
		t.Fatalf("got %q, want %q", got, "a\n")
	}
}

func TestCdPersistsWithinGroupNotCaller(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	g := NewGroup()
	g.Add(NewPipeline().Pipe(NewStage().AddArgs("cd", dir)), nil)
	g.Add(NewPipeline().Pipe(NewStage().AddArgs("pwd")), nil)

	out, err := g.RunString()
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	if resolved, _ := filepath.EvalSymlinks(dir); out != resolved && out != dir {
		t.Fatalf("pwd reported %q, want %q", out, dir)
	}

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != wd {
		t.Fatalf("caller's cwd changed to %q, want unchanged %q", after, wd)
	}
}

func TestPipefailCatchesNonFinalFailure(t *testing.T) {
	SetPipefail(true)
	defer SetPipefail(true)

	p := NewPipeline().
		Pipe(NewStage().AddArg("false")).
		Pipe(NewStage().AddArgs("cat"))

	err := NewGroup().Add(p, nil).RunStatus()
	if err == nil {
		t.Fatal("expected pipefail to surface the upstream failure, got nil")
	}
}

func TestPipefailDisabledIgnoresNonFinalFailure(t *testing.T) {
	SetPipefail(false)
	defer SetPipefail(true)

	p := NewPipeline().
		Pipe(NewStage().AddArg("false")).
		Pipe(NewStage().AddArgs("echo", "ok"))

	got := runOutput(t, p)
	if got != "ok" {
		t.Fatalf("got %q, want %q", got, "ok")
	}
}

func TestMissingBinarySpawnError(t *testing.T) {
	p := NewPipeline().Pipe(NewStage().AddArg("definitely-not-a-real-binary-xyz"))
	err := NewGroup().Add(p, nil).RunStatus()
	if err == nil {
		t.Fatal("expected an error spawning a nonexistent binary")
	}
}

func TestFallbackPipelineRunsOnPrimaryFailure(t *testing.T) {
	primary := NewPipeline().Pipe(NewStage().AddArg("false"))
	fallback := NewPipeline().Pipe(NewStage().AddArgs("echo", "recovered"))

	g := NewGroup().Add(primary, fallback)
	got, err := g.RunString()
	if err != nil {
		t.Fatalf("RunString: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("got %q, want %q", got, "recovered")
	}
}

func TestEmptyPipelineRejected(t *testing.T) {
	g := NewGroup().Add(NewPipeline(), nil)
	if err := g.RunStatus(); err == nil {
		t.Fatal("expected an empty pipeline to be rejected")
	}
}

func TestSpawnDefersWaitToCaller(t *testing.T) {
	p := NewPipeline().Pipe(NewStage().AddArgs("echo", "-n", "deferred"))
	g := NewGroup().Add(p, nil)

	w, err := g.SpawnWithOutput()
	if err != nil {
		t.Fatalf("SpawnWithOutput: %v", err)
	}

	got, err := w.WaitString()
	if err != nil {
		t.Fatalf("WaitString: %v", err)
	}
	if got != "deferred" {
		t.Fatalf("got %q, want %q", got, "deferred")
	}
}

func TestSpawnWaiterFallsBackOnWaitFailure(t *testing.T) {
	primary := NewPipeline().Pipe(NewStage().AddArg("false"))
	fallback := NewPipeline().Pipe(NewStage().AddArgs("echo", "-n", "recovered"))

	g := NewGroup().Add(primary, fallback)
	w, err := g.SpawnWithOutput()
	if err != nil {
		t.Fatalf("SpawnWithOutput: %v", err)
	}

	got, err := w.WaitString()
	if err != nil {
		t.Fatalf("WaitString: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("got %q, want %q", got, "recovered")
	}
}

func TestSpawnRejectsNonSingleEntryGroup(t *testing.T) {
	g := NewGroup()
	if _, err := g.Spawn(); err == nil {
		t.Fatal("expected Spawn on an empty group to fail")
	}
	g.Add(NewPipeline().Pipe(NewStage().AddArg("true")), nil)
	g.Add(NewPipeline().Pipe(NewStage().AddArg("true")), nil)
	if _, err := g.Spawn(); err == nil {
		t.Fatal("expected Spawn with more than one entry to fail")
	}
}
