package builtins

import (
	"github.com/atotto/clipboard"

	"cmdpipe/pkg/cmdpipe"
)

// RegisterClip registers "clip": copies stdin to the OS clipboard and
// produces no stdout, the way a terminal "pbcopy"/"xclip -i" does.
func RegisterClip() {
	cmdpipe.Register("clip", func(env *cmdpipe.Env) error {
		return clipboard.WriteAll(string(env.Stdin()))
	})
}
