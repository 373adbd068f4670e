package cmdpipe

import (
	"os"
	"sync"
)

// groupEntry pairs a primary pipeline with an optional fallback: if the
// primary fails to even spawn or run to completion, the fallback is tried
// next, and its result (success or failure) is what the group reports for
// that entry.
type groupEntry struct {
	primary  *Pipeline
	fallback *Pipeline
}

// Group is a sequence of pipelines sharing one mutable working directory —
// the unit "cd" mutates. A fresh Group starts in the process's actual
// current directory; RunStatus/RunOutput run every entry in order and stop
// at the first unrecovered failure.
type Group struct {
	mu         sync.Mutex
	entries    []groupEntry
	currentDir string
}

// NewGroup returns a Group seeded with the process's current working
// directory.
func NewGroup() *Group {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Group{currentDir: wd}
}

// Add appends a pipeline (and optional fallback, which may be nil) to the
// group.
func (g *Group) Add(primary *Pipeline, fallback *Pipeline) *Group {
	g.entries = append(g.entries, groupEntry{primary: primary, fallback: fallback})
	return g
}

// CurrentDir returns the group's working directory as of the most recently
// completed "cd" stage (or the group's starting directory if none has run).
func (g *Group) CurrentDir() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentDir
}

// runEntry spawns and drains one entry's primary pipeline, falling back to
// its fallback pipeline (spawned fresh from the same current_dir) if the
// primary returns an error. Both spawning and waiting failures trigger the
// fallback — only a spawn/run that completes with a nil error counts as the
// primary succeeding. A failing primary (or fallback) is always logged at
// error level, independent of CMD_LIB_DEBUG.
func (g *Group) runEntry(e groupEntry, withOutput bool) ([]byte, error) {
	dir := g.CurrentDir()

	res, err := e.primary.spawn(dir, withOutput)
	var out []byte
	if err == nil {
		out, err = waitAll(res, withOutput)
	}
	if err == nil {
		g.setCurrentDir(res.currentDir)
		return out, nil
	}

	log.Error().Str("pipeline", e.primary.debugString()).Err(err).Msg("pipeline failed")
	return g.runFallback(e, err, dir, withOutput)
}

// runFallback spawns and drains an entry's fallback pipeline (if any) from
// dir, reporting primaryErr unchanged when there is no fallback to try.
// Shared by runEntry and Waiter.wait so a primary that fails at
// spawn-or-wait time, whether discovered synchronously or after a deferred
// Wait, resolves to the fallback the same way.
func (g *Group) runFallback(e groupEntry, primaryErr error, dir string, withOutput bool) ([]byte, error) {
	if e.fallback == nil {
		return nil, primaryErr
	}

	fres, ferr := e.fallback.spawn(dir, withOutput)
	var fout []byte
	if ferr == nil {
		fout, ferr = waitAll(fres, withOutput)
	}
	if ferr != nil {
		log.Error().Str("pipeline", e.fallback.debugString()).Err(ferr).Msg("fallback pipeline failed")
		return nil, ferr
	}
	g.setCurrentDir(fres.currentDir)
	return fout, nil
}

func (g *Group) setCurrentDir(dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.currentDir = dir
}

// RunPipeline spawns and drains a single pipeline immediately against the
// group's current working directory, updating that directory afterward (a
// "cd" stage still mutates it) without recording the pipeline as one of the
// group's entries. This is the entry point an interactive host (one
// pipeline per input line) wants; RunStatus/RunOutput are for a
// batch of entries queued up front via Add.
func (g *Group) RunPipeline(p *Pipeline, withOutput bool) ([]byte, error) {
	return g.runEntry(groupEntry{primary: p}, withOutput)
}

// RunStatus runs every entry in the group, in order, stopping at (and
// returning) the first error that neither a primary nor its fallback
// recovers from.
func (g *Group) RunStatus() error {
	if len(g.entries) == 0 {
		return ErrNoPipelines
	}
	for _, e := range g.entries {
		if _, err := g.runEntry(e, false); err != nil {
			return err
		}
	}
	return nil
}

// RunOutput runs every entry in the group and returns the last entry's
// captured stdout. Every non-final entry still runs for its status only
// (matching the original run_fun's "all but last status, last output"
// sequencing); a non-final entry's failure still aborts the group.
func (g *Group) RunOutput() ([]byte, error) {
	if len(g.entries) == 0 {
		return nil, ErrNoPipelines
	}
	var last []byte
	for i, e := range g.entries {
		withOutput := i == len(g.entries)-1
		out, err := g.runEntry(e, withOutput)
		if err != nil {
			return nil, err
		}
		if withOutput {
			last = out
		}
	}
	return last, nil
}

// RunString is RunOutput with the same string conventions as
// Waiter.WaitString: a single trailing newline stripped, invalid UTF-8
// replaced lossily.
func (g *Group) RunString() (string, error) {
	out, err := g.RunOutput()
	if err != nil {
		return "", err
	}
	return trimTrailingNewline(toValidUTF8(out)), nil
}

// Waiter is a pipeline that has been spawned but not yet drained: its
// external stages are live child processes and its builtin stages have
// already run to completion, but nothing has been waited on or read out yet.
// Spawn/SpawnWithOutput return a Waiter instead of a result, deferring the
// wait to the caller — the two-phase counterpart to RunStatus/RunOutput,
// matching original_source/src/process.rs's spawn/spawn_with_output, which
// return a WaitCmd/WaitFun rather than an already-waited result. A Waiter
// that is dropped without a Wait call abandons its spawned children; nothing
// reaps them.
type Waiter struct {
	g          *Group
	entry      groupEntry
	res        *spawnResult
	dir        string
	withOutput bool
}

// wait drains every stage, falling back to the entry's fallback pipeline (if
// any) on failure exactly as runEntry does, and updates the group's
// current_dir on whichever path succeeds.
func (w *Waiter) wait() ([]byte, error) {
	out, err := waitAll(w.res, w.withOutput)
	if err == nil {
		w.g.setCurrentDir(w.res.currentDir)
		return out, nil
	}
	log.Error().Str("pipeline", w.entry.primary.debugString()).Err(err).Msg("pipeline failed")
	return w.g.runFallback(w.entry, err, w.dir, w.withOutput)
}

// Wait drains the pipeline and reports its status only.
func (w *Waiter) Wait() error {
	_, err := w.wait()
	return err
}

// WaitWithOutput drains the pipeline and returns its captured stdout (only
// meaningful if the Waiter came from SpawnWithOutput).
func (w *Waiter) WaitWithOutput() ([]byte, error) {
	return w.wait()
}

// WaitString is WaitWithOutput with RunString's trailing-newline/UTF-8
// conventions.
func (w *Waiter) WaitString() (string, error) {
	out, err := w.wait()
	if err != nil {
		return "", err
	}
	return trimTrailingNewline(toValidUTF8(out)), nil
}

// Spawn requires the group to hold exactly one entry, spawns its primary
// pipeline, and returns a Waiter without draining it, matching the
// original's assert_eq!(group_cmds.len(), 1) guard on its single-pipeline
// spawn path. A spawn-time failure (e.g. a missing binary or a bad redirect)
// is returned directly rather than deferred, since nothing has run yet to
// hand the caller a Waiter for.
func (g *Group) Spawn() (*Waiter, error) {
	return g.spawn(false)
}

// SpawnWithOutput is Spawn's counterpart for a Waiter whose Wait methods
// capture the pipeline's stdout.
func (g *Group) SpawnWithOutput() (*Waiter, error) {
	return g.spawn(true)
}

func (g *Group) spawn(withOutput bool) (*Waiter, error) {
	if len(g.entries) != 1 {
		return nil, ErrNoPipelines
	}
	entry := g.entries[0]
	dir := g.CurrentDir()

	res, err := entry.primary.spawn(dir, withOutput)
	if err != nil {
		return nil, err
	}
	return &Waiter{g: g, entry: entry, res: res, dir: dir, withOutput: withOutput}, nil
}
