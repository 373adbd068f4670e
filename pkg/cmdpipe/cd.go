package cmdpipe

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// spawnCd implements the "cd" stage as a hardcoded special case, checked by
// literal arg0 comparison ahead of any registry lookup — "cd" need not be
// (and normally isn't) a registered builtin. It takes exactly one operand,
// resolves it against the group's current current_dir, and requires the
// result to be a directory the caller can execute (search) into.
func spawnCd(st *Stage, currentDir string) (*stageHandle, string, error) {
	debug := st.DebugString()
	operands := st.argv[1:]

	switch len(operands) {
	case 0:
		return nil, currentDir, ErrMissingOperand
	case 1:
		// fine
	default:
		return nil, currentDir, ErrTooManyOperands
	}

	target := operands[0]
	if !filepath.IsAbs(target) {
		target = filepath.Join(currentDir, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return nil, currentDir, fmt.Errorf("%w: %s", ErrNotADirectory, target)
	}
	if !info.IsDir() {
		return nil, currentDir, fmt.Errorf("%w: %s", ErrNotADirectory, target)
	}
	if err := unix.Access(target, unix.X_OK); err != nil {
		return nil, currentDir, fmt.Errorf("%w: %s", ErrNotExecutable, target)
	}

	return &stageHandle{kind: handleBuffer, debug: debug, buf: nil}, target, nil
}
