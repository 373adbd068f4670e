package cmdpipe

import "bytes"

// Env is passed by reference to every builtin callback. args/envs/currentDir
// are read-only views into the owning Stage; inbuf/outbuf/errbuf are the
// builtin's private buffered stdin/stdout/stderr.
type Env struct {
	args       []string
	envs       map[string]string
	currentDir string

	inbuf  []byte
	outbuf bytes.Buffer
	errbuf bytes.Buffer
}

func newEnv(args []string, envs map[string]string, currentDir string) *Env {
	return &Env{args: args, envs: envs, currentDir: currentDir}
}

// Args returns the stage's argument vector, arg0 included.
func (e *Env) Args() []string { return e.args }

// Var looks up a stage-local env-assignment (the NAME=VALUE prefix peeled off
// the stage's argv). It does not fall back to the process environment — the
// core never merges the two, leaving that choice to the builtin.
func (e *Env) Var(key string) (string, bool) {
	v, ok := e.envs[key]
	return v, ok
}

// CurrentDir returns the group's working-directory cell as of when this
// stage started running.
func (e *Env) CurrentDir() string { return e.currentDir }

// Stdin returns the bytes collected for this builtin's stdin.
func (e *Env) Stdin() []byte { return e.inbuf }

// Stdout appends p to the builtin's stdout buffer.
func (e *Env) Stdout(p []byte) { e.outbuf.Write(p) }

// Stderr appends p to the builtin's stderr buffer.
func (e *Env) Stderr(p []byte) { e.errbuf.Write(p) }

// WriteString is a convenience wrapper over Stdout for text-producing builtins.
func (e *Env) WriteString(s string) { e.outbuf.WriteString(s) }
