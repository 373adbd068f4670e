package cmdpipe

import (
	"fmt"
	"os"
)

// RedirectKind tags which of the five directive shapes a Redirect carries.
type RedirectKind int

const (
	FileToStdin RedirectKind = iota
	StdoutToStderr
	StderrToStdout
	StdoutToFile
	StderrToFile
)

// Redirect is one I/O redirection directive. Path/Append are only meaningful
// for the File* kinds. Order inside a Stage's redirect list is significant:
// StdoutToStderr/StderrToStdout duplicate whatever the *current* target of
// the other stream is at the point they appear, not the caller's inherited
// handle.
type Redirect struct {
	Kind   RedirectKind
	Path   string
	Append bool
}

func (r Redirect) String() string {
	switch r.Kind {
	case FileToStdin:
		return fmt.Sprintf("< %s", r.Path)
	case StdoutToStderr:
		return ">&2"
	case StderrToStdout:
		return "2>&1"
	case StdoutToFile:
		if r.Append {
			return fmt.Sprintf("1>> %s", r.Path)
		}
		return fmt.Sprintf("1> %s", r.Path)
	case StderrToFile:
		if r.Append {
			return fmt.Sprintf("2>> %s", r.Path)
		}
		return fmt.Sprintf("2> %s", r.Path)
	default:
		return "?"
	}
}

// devStdout / devStderr mirror the original's "/dev/stdout" / "/dev/stderr"
// fallback targets for a bare >&2 / 2>&1 with no prior redirect of that
// stream. Real device nodes exist on Linux and Darwin; elsewhere (or if the
// node is missing) we fall back to the process's own inherited stdout/stderr
// handle itself (not a duplicate), which closeAll leaves open. This is a
// local, runtime file-existence check, not an
// OS feature-detection abstraction — that stays out of the core per spec.
func openDevOrInherit(path string, inherited *os.File) (*os.File, error) {
	if _, err := os.Stat(path); err == nil {
		return openFile(path, false, true)
	}
	return inherited, nil
}

func openFile(path string, readOnly, appendMode bool) (*os.File, error) {
	if readOnly {
		return os.Open(path)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(path, flags, 0o644)
}

// redirectPlan is the resolved outcome of walking a stage's redirect list:
// concrete open file handles for stdin/stdout/stderr, ready either to be
// installed on an exec.Cmd or used directly by a builtin.
type redirectPlan struct {
	stdin  *os.File
	stdout *os.File
	stderr *os.File
}

func (p *redirectPlan) closeAll() {
	for _, f := range []*os.File{p.stdin, p.stdout, p.stderr} {
		if f != nil && f != os.Stdin && f != os.Stdout && f != os.Stderr {
			f.Close()
		}
	}
}

// planRedirects walks redirects in declaration order, tracking the "current"
// stdout/stderr target path so that >&N / N>&M duplication picks up whatever
// was most recently redirected rather than the caller's inherited stream.
// Opens happen eagerly; on the first failure the plan so far is closed and
// the error returned — callers must not have spawned anything yet.
func planRedirects(redirects []Redirect) (*redirectPlan, error) {
	plan := &redirectPlan{}
	stdoutTarget := "/dev/stdout"
	stderrTarget := "/dev/stderr"

	closeOnErr := func(err error) (*redirectPlan, error) {
		plan.closeAll()
		return nil, err
	}

	for _, r := range redirects {
		switch r.Kind {
		case FileToStdin:
			f, err := openFile(r.Path, true, false)
			if err != nil {
				return closeOnErr(err)
			}
			if plan.stdin != nil {
				plan.stdin.Close()
			}
			plan.stdin = f

		case StdoutToFile:
			f, err := openFile(r.Path, false, r.Append)
			if err != nil {
				return closeOnErr(err)
			}
			if plan.stdout != nil {
				plan.stdout.Close()
			}
			plan.stdout = f
			stdoutTarget = r.Path

		case StderrToFile:
			f, err := openFile(r.Path, false, r.Append)
			if err != nil {
				return closeOnErr(err)
			}
			if plan.stderr != nil {
				plan.stderr.Close()
			}
			plan.stderr = f
			stderrTarget = r.Path

		case StdoutToStderr:
			var f *os.File
			var err error
			if plan.stderr != nil {
				f, err = reopenLike(plan.stderr)
			} else {
				f, err = openDevOrInherit(stderrTarget, os.Stderr)
			}
			if err != nil {
				return closeOnErr(err)
			}
			if plan.stdout != nil && plan.stdout != f {
				plan.stdout.Close()
			}
			plan.stdout = f

		case StderrToStdout:
			var f *os.File
			var err error
			if plan.stdout != nil {
				f, err = reopenLike(plan.stdout)
			} else {
				f, err = openDevOrInherit(stdoutTarget, os.Stdout)
			}
			if err != nil {
				return closeOnErr(err)
			}
			if plan.stderr != nil && plan.stderr != f {
				plan.stderr.Close()
			}
			plan.stderr = f

		default:
			return closeOnErr(fmt.Errorf("%w: %v", ErrUnknownBuiltin, r.Kind))
		}
	}

	return plan, nil
}

// reopenLike duplicates an already-open redirect target by reopening its
// path write-only in append mode. Go's os.File has no portable dup(2) wrapper at this
// level, so "duplicate the current target" is implemented by reopening the
// same path rather than cloning the fd — observably equivalent for the
// append-only write patterns this planner deals in.
func reopenLike(f *os.File) (*os.File, error) {
	return os.OpenFile(f.Name(), os.O_WRONLY|os.O_APPEND, 0o644)
}
