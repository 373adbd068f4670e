// Package builtins holds optional cmdpipe builtins that each wire in one
// third-party dependency for a concern the core pipeline never needed:
// interactive fuzzy selection, process inspection, and clipboard access.
// None of them are registered automatically — a host imports the ones it
// wants and calls its Register func.
package builtins

import (
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"cmdpipe/pkg/cmdpipe"
)

// RegisterPick registers "pick": reads newline-delimited candidates from
// stdin, opens an interactive fuzzy-finder prompt (grounded on die's
// fzfSelect), and writes the chosen line to stdout with no trailing
// newline. Cancelling the prompt (Esc / Ctrl-C) is reported as an error.
func RegisterPick() {
	cmdpipe.Register("pick", func(env *cmdpipe.Env) error {
		candidates := splitNonEmptyLines(string(env.Stdin()))
		if len(candidates) == 0 {
			return cmdpipe.ErrMissingOperand
		}

		idx, err := fuzzyfinder.Find(
			candidates,
			func(i int) string { return candidates[i] },
			fuzzyfinder.WithPromptString("pick> "),
		)
		if err != nil {
			return err
		}
		env.WriteString(candidates[idx])
		return nil
	})
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
