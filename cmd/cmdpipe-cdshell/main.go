// Command cmdpipe-cdshell is a minimal readline loop that treats every input
// line as a bare directory and runs "cd <dir> | pwd" through one persistent
// Group, demonstrating that current_dir survives across pipelines within a
// group but never leaks into the host process. It is not a shell: no
// tokenizing, quoting or globbing happens here.
package main

import (
	"fmt"
	"io"

	"github.com/chzyer/readline"
	flag "github.com/spf13/pflag"

	"cmdpipe/pkg/cmdpipe"
	"cmdpipe/pkg/lib"
)

func main() {
	debug := flag.BoolP("debug", "d", false, "enable CMD_LIB_DEBUG-equivalent logging")
	prompt := flag.StringP("prompt", "p", "cdshell> ", "readline prompt")
	flag.Parse()

	cmdpipe.SetDebug(*debug)

	rl, err := readline.New(*prompt)
	if err != nil {
		lib.Exit(err)
	}
	defer rl.Close()

	group := cmdpipe.NewGroup()

	for {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return
		}
		if err != nil {
			lib.Exit(err)
		}
		if line == "" {
			continue
		}

		p := cmdpipe.NewPipeline().
			Pipe(cmdpipe.NewStage().AddArgs("cd", line)).
			Pipe(cmdpipe.NewStage().AddArg("pwd"))

		out, err := group.RunPipeline(p, true)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Print(string(out))
	}
}
