package cmdpipe

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Pipeline is an ordered list of Stages wired stdout-to-stdin, left to right,
// the way a shell pipeline ("a | b | c") is. An empty Pipeline cannot be
// spawned.
type Pipeline struct {
	stages []*Stage
}

// NewPipeline returns an empty Pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Pipe appends a stage to the pipeline and returns the Pipeline for chaining.
func (p *Pipeline) Pipe(s *Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

// debugString joins every stage's debug rendering with " | ", the pipeline
// equivalent of a shell command line.
func (p *Pipeline) debugString() string {
	parts := make([]string, len(p.stages))
	for i, s := range p.stages {
		parts[i] = s.DebugString()
	}
	return strings.Join(parts, " | ")
}

// handleKind tags what a spawned stage produced: a live child process, or an
// in-memory buffer from a builtin that already ran to completion.
type handleKind int

const (
	handleChild handleKind = iota
	handleBuffer
)

// stageHandle is what spawning one Stage produces: either a running
// *exec.Cmd with pipes still open, or a builtin's already-computed output.
type stageHandle struct {
	kind  handleKind
	debug string

	cmd        *exec.Cmd
	stdoutPipe io.ReadCloser
	stderrPipe io.ReadCloser
	plan       *redirectPlan

	buf []byte

	// consumed marks a live child's stdoutPipe as already handed directly to
	// a successor's Stdin (External -> External wiring). finish() must not
	// also read it itself: the successor process owns that fd now, and the
	// parent's remaining copy is a plain OS pipe whose read position is
	// shared, not duplicated.
	consumed bool

	// finish() memoizes its result so a handle drained mid-spawn (to feed a
	// later stage) reports the same status/output when the Waiter reaches it
	// again, instead of double-waiting the child.
	waited      bool
	finishedOut []byte
	finishedErr error
}

// finish waits a live child exactly once (reading its pipes to EOF first)
// and caches the result; repeat calls are cheap and idempotent. For a
// builtin's buffered handle there is nothing to wait for.
func (h *stageHandle) finish() ([]byte, error) {
	if h.waited {
		return h.finishedOut, h.finishedErr
	}
	h.waited = true

	if h.kind == handleBuffer {
		h.finishedOut = h.buf
		return h.finishedOut, nil
	}

	var out []byte
	if !h.consumed && h.stdoutPipe != nil {
		out, _ = io.ReadAll(h.stdoutPipe)
	}
	if h.stderrPipe != nil {
		errData, _ := io.ReadAll(h.stderrPipe)
		logStderrLines(h.debug, errData)
	}
	waitErr := h.cmd.Wait()
	if h.plan != nil {
		h.plan.closeAll()
	}

	h.finishedOut = out
	if waitErr != nil {
		h.finishedErr = statusToError(h.debug, waitErr)
	}
	return h.finishedOut, h.finishedErr
}

// spawnResult is what Pipeline.spawn returns: the ordered handles (for
// waiting) plus the final current_dir, since a "cd" stage mutates it.
type spawnResult struct {
	handles    []*stageHandle
	currentDir string
}

// planAllRedirects opens every stage's redirect files up front, left to
// right. If any stage's redirects fail to open, every plan already opened is
// closed and the error is returned before any stage has been spawned —
// redirect setup never interleaves with spawning.
func planAllRedirects(stages []*Stage) ([]*redirectPlan, error) {
	plans := make([]*redirectPlan, len(stages))
	for i, st := range stages {
		plan, err := planRedirects(st.redirects)
		if err != nil {
			for j := 0; j < i; j++ {
				plans[j].closeAll()
			}
			return nil, err
		}
		plans[i] = plan
	}
	return plans, nil
}

// closeUnusedPlans closes the redirect plans for stages at or after from,
// used when a spawn failure mid-walk leaves later stages' already-opened
// redirect files dangling.
func closeUnusedPlans(plans []*redirectPlan, from int) {
	for i := from; i < len(plans); i++ {
		plans[i].closeAll()
	}
}

// spawn plans every stage's redirects before spawning any of them, then walks
// the stages left to right, wiring each one's stdin to the previous stage's
// output per the four External/Builtin combinations, and returns the full set
// of handles for a Waiter to drain. If any redirect fails to open, no stage in
// the pipeline has been spawned; matches original_source/src/process.rs's
// Cmds::spawn, which runs cmd.setup_redirects() to completion for every
// stage before its second loop spawns any of them.
func (p *Pipeline) spawn(currentDir string, withOutput bool) (*spawnResult, error) {
	if len(p.stages) == 0 {
		return nil, ErrEmptyPipeline
	}

	plans, err := planAllRedirects(p.stages)
	if err != nil {
		return nil, err
	}

	res := &spawnResult{currentDir: currentDir}
	var prev *stageHandle

	for i, st := range p.stages {
		isFirst := i == 0
		isLast := i == len(p.stages)-1
		plan := plans[i]

		if st.arg0() == "cd" {
			plan.closeAll()
			h, newDir, err := spawnCd(st, res.currentDir)
			if err != nil {
				drainOnSpawnError(res.handles)
				closeUnusedPlans(plans, i+1)
				return nil, err
			}
			res.currentDir = newDir
			res.handles = append(res.handles, h)
			prev = h
			continue
		}

		if st.isBuiltin || st.arg0() == "" {
			h, err := spawnBuiltin(st, plan, prev, res.currentDir)
			if err != nil {
				drainOnSpawnError(res.handles)
				closeUnusedPlans(plans, i+1)
				return nil, err
			}
			res.handles = append(res.handles, h)
			prev = h
			continue
		}

		h, err := spawnExternal(st, plan, prev, isFirst, isLast, withOutput, res.currentDir)
		if err != nil {
			drainOnSpawnError(res.handles)
			closeUnusedPlans(plans, i+1)
			return nil, err
		}
		res.handles = append(res.handles, h)
		prev = h
	}

	return res, nil
}

// drainOnSpawnError best-effort reaps already-started children when a later
// stage in the same pipeline fails to spawn, so we don't leak zombies.
func drainOnSpawnError(handles []*stageHandle) {
	for _, h := range handles {
		if h.kind == handleChild && h.cmd.Process != nil {
			if h.stdoutPipe != nil {
				io.Copy(io.Discard, h.stdoutPipe)
			}
			h.cmd.Wait()
		}
	}
}

// drainPredecessor fully materializes the previous stage's output as bytes,
// for handoff into a builtin's Env.inbuf or a spawned child's stdin. For a
// live child this reads its stdout pipe to EOF and waits it immediately —
// any non-zero exit here is returned straight away rather than deferred to
// the Waiter, since there is no later point at which this conversion could
// be retried.
func drainPredecessor(prev *stageHandle) ([]byte, error) {
	if prev == nil {
		return nil, nil
	}
	return prev.finish()
}

// spawnBuiltin runs a registered builtin synchronously to completion,
// collecting whatever bytes the previous stage produced as its stdin. plan is
// this stage's already-opened redirect plan, from planAllRedirects.
func spawnBuiltin(st *Stage, plan *redirectPlan, prev *stageHandle, currentDir string) (*stageHandle, error) {
	defer plan.closeAll()

	in, err := drainPredecessor(prev)
	if err != nil {
		return nil, err
	}
	if plan.stdin != nil {
		fileIn, rerr := io.ReadAll(plan.stdin)
		if rerr != nil {
			return nil, rerr
		}
		in = fileIn
	}

	name := st.arg0()
	fn, ok := globalRegistry.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuiltin, name)
	}

	env := newEnv(st.argv, st.envs, currentDir)
	env.inbuf = in

	debug := st.DebugString()
	runErr := fn(env)

	out := env.outbuf.Bytes()
	if plan.stdout != nil {
		if _, werr := plan.stdout.Write(out); werr != nil && runErr == nil {
			runErr = werr
		}
		out = nil
	}
	if plan.stderr != nil {
		plan.stderr.Write(env.errbuf.Bytes())
	} else {
		logStderrLines(debug, env.errbuf.Bytes())
	}

	if runErr != nil {
		return nil, &BuiltinError{Debug: debug, Err: runErr}
	}

	return &stageHandle{kind: handleBuffer, debug: debug, buf: out}, nil
}

// spawnExternal starts a real child process, wiring stdin from the previous
// stage (a buffer write, a live pipe, or an inherited terminal for the first
// stage) and stdout either to a pipe (for the next stage / output capture) or
// to the caller's own stdout when this is the pipeline's last stage and no
// one asked for its output. plan is this stage's already-opened redirect
// plan, from planAllRedirects.
func spawnExternal(st *Stage, plan *redirectPlan, prev *stageHandle, isFirst, isLast, withOutput bool, currentDir string) (*stageHandle, error) {
	var err error
	cmd := exec.Command(st.argv[0], st.argv[1:]...)
	cmd.Dir = currentDir
	cmd.Env = os.Environ()
	for k, v := range st.envs {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	debug := st.DebugString()
	var pendingStdin []byte

	switch {
	case plan.stdin != nil:
		cmd.Stdin = plan.stdin
	case isFirst:
		cmd.Stdin = os.Stdin
	case prev != nil && prev.kind == handleChild && prev.stdoutPipe != nil:
		cmd.Stdin = prev.stdoutPipe
		prev.consumed = true
	case prev != nil && prev.kind == handleBuffer:
		b, _ := prev.finish()
		pendingStdin = b
		cmd.Stdin = nil // wired via StdinPipe below
	default:
		b, derr := drainPredecessor(prev)
		if derr != nil {
			plan.closeAll()
			return nil, derr
		}
		pendingStdin = b
	}

	var stdinPipe io.WriteCloser
	if pendingStdin != nil {
		stdinPipe, err = cmd.StdinPipe()
		if err != nil {
			plan.closeAll()
			return nil, err
		}
	}

	var stdoutPipe io.ReadCloser
	switch {
	case plan.stdout != nil:
		cmd.Stdout = plan.stdout
	case isLast && !withOutput:
		cmd.Stdout = os.Stdout
	default:
		stdoutPipe, err = cmd.StdoutPipe()
		if err != nil {
			plan.closeAll()
			return nil, err
		}
	}

	var stderrPipe io.ReadCloser
	if plan.stderr != nil {
		cmd.Stderr = plan.stderr
	} else {
		stderrPipe, err = cmd.StderrPipe()
		if err != nil {
			plan.closeAll()
			return nil, err
		}
	}

	if debugEnabled() {
		log.Level(zerolog.DebugLevel).Debug().Msgf("Running %s ...", debug)
	}

	if err := cmd.Start(); err != nil {
		plan.closeAll()
		return nil, fmt.Errorf("%s: %w", debug, err)
	}

	if prev != nil && prev.consumed && prev.stdoutPipe != nil {
		prev.stdoutPipe.Close()
	}

	if stdinPipe != nil {
		go func() {
			stdinPipe.Write(pendingStdin)
			stdinPipe.Close()
		}()
	}

	return &stageHandle{
		kind:       handleChild,
		debug:      debug,
		cmd:        cmd,
		stdoutPipe: stdoutPipe,
		stderrPipe: stderrPipe,
		plan:       plan,
	}, nil
}
