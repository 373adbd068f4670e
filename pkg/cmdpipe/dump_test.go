package cmdpipe

import (
	"strings"
	"testing"
)

func TestDumpPipelineIncludesStageArgs(t *testing.T) {
	p := NewPipeline().
		Pipe(NewStage().AddArgs("echo", "hi")).
		Pipe(NewStage().AddArg("wc"))

	out, err := DumpPipeline(p)
	if err != nil {
		t.Fatalf("DumpPipeline: %v", err)
	}
	if !strings.Contains(out, "echo") || !strings.Contains(out, "wc") {
		t.Fatalf("dump %q missing expected stage args", out)
	}
}

func TestDumpGroupIncludesFallback(t *testing.T) {
	g := NewGroup()
	g.Add(
		NewPipeline().Pipe(NewStage().AddArg("false")),
		NewPipeline().Pipe(NewStage().AddArgs("echo", "fallback")),
	)

	out, err := DumpGroup(g)
	if err != nil {
		t.Fatalf("DumpGroup: %v", err)
	}
	if !strings.Contains(out, "fallback") || !strings.Contains(out, "current_dir") {
		t.Fatalf("dump %q missing expected fallback/current_dir", out)
	}
}
