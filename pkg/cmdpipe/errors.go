package cmdpipe

import (
	"errors"
	"fmt"
)

// Sentinel errors for construction and setup failures. Wrapped with %w at the
// call site so callers can errors.Is/errors.As the way cmd/devshell's dsl
// package does with its own sentinels.
var (
	ErrEmptyPipeline   = errors.New("cmdpipe: empty pipeline")
	ErrNoPipelines     = errors.New("cmdpipe: group has no pipelines")
	ErrMissingOperand  = errors.New("cmdpipe: cd: missing directory")
	ErrTooManyOperands = errors.New("cmdpipe: cd: too many arguments")
	ErrNotADirectory   = errors.New("cmdpipe: not a directory")
	ErrNotExecutable   = errors.New("cmdpipe: not executable")
	ErrUnknownBuiltin  = errors.New("cmdpipe: unknown builtin")
)

// ExitError reports a stage that ran to completion but exited with a non-zero
// status. Message format is mandated by the external-interfaces contract:
// "<debug_str> exited with error; status code: N".
type ExitError struct {
	Debug string
	Code  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with error; status code: %d", e.Debug, e.Code)
}

// SignalError reports a stage killed by a signal rather than exiting normally.
// Message format: "<debug_str> exited with error; terminated by <signal-desc>".
type SignalError struct {
	Debug  string
	Signal string
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("%s exited with error; terminated by %s", e.Debug, e.Signal)
}

// BuiltinError wraps a failure returned by a builtin callback, tagging it with
// the stage's debug string for consistent error reporting alongside ExitError
// and SignalError.
type BuiltinError struct {
	Debug string
	Err   error
}

func (e *BuiltinError) Error() string {
	return fmt.Sprintf("%s: %s", e.Debug, e.Err)
}

func (e *BuiltinError) Unwrap() error { return e.Err }
