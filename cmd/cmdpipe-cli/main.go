// Command cmdpipe-cli is a flag-driven front end over the cmdpipe core: it
// builds Pipelines/Groups from cobra subcommands and flags rather than
// parsing any shell syntax of its own.
package main

import (
	"fmt"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"cmdpipe/pkg/builtins"
	"cmdpipe/pkg/cmdpipe"
	"cmdpipe/pkg/lib"
)

var rootCmd *cobra.Command

func init() {
	builtins.RegisterPick()
	builtins.RegisterPsinfo()
	builtins.RegisterClip()

	rootCmd = &cobra.Command{
		Use:   "cmdpipe-cli",
		Short: "Build and run command pipelines from flags, not shell syntax",
	}

	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newRedirectDemoCommand())
	rootCmd.AddCommand(newFallbackDemoCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		lib.Exit(err)
	}
}

// newDemoCommand runs N external stages piped left to right, e.g.:
//
//	cmdpipe-cli demo --stage "echo hello" --stage "wc -c"
func newDemoCommand() *cobra.Command {
	var stages []string
	var debug bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a pipeline built from one --stage flag per command",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdpipe.SetDebug(debug)
			if len(stages) == 0 {
				return fmt.Errorf("at least one --stage is required")
			}

			p := cmdpipe.NewPipeline()
			for _, s := range stages {
				st := cmdpipe.NewStage()
				for _, tok := range splitFields(s) {
					st.AddArg(tok)
				}
				p.Pipe(st)
			}

			start := time.Now()
			out, err := cmdpipe.NewGroup().Add(p, nil).RunString()
			if err != nil {
				return err
			}
			fmt.Println(out)
			fmt.Println(humanize.RelTime(start, time.Now(), "ago", "from now"))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&stages, "stage", nil, "one pipeline stage, e.g. \"wc -c\" (repeatable)")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable CMD_LIB_DEBUG-equivalent logging")
	return cmd
}

// newRedirectDemoCommand writes a stage's stdout to a file and then cats it
// back, exercising the redirect planner end to end.
func newRedirectDemoCommand() *cobra.Command {
	var stage, path string

	cmd := &cobra.Command{
		Use:   "redirect-demo",
		Short: "Run --stage, redirect its stdout to --file, then print the file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stage == "" || path == "" {
				return fmt.Errorf("both --stage and --file are required")
			}

			st := cmdpipe.NewStage()
			for _, tok := range splitFields(stage) {
				st.AddArg(tok)
			}
			st.AddRedirect(cmdpipe.Redirect{Kind: cmdpipe.StdoutToFile, Path: path})

			write := cmdpipe.NewPipeline().Pipe(st)
			if err := cmdpipe.NewGroup().Add(write, nil).RunStatus(); err != nil {
				return err
			}

			read := cmdpipe.NewPipeline().Pipe(cmdpipe.NewStage().AddArgs("cat", path))
			out, err := cmdpipe.NewGroup().Add(read, nil).RunString()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "stage whose stdout is redirected")
	cmd.Flags().StringVar(&path, "file", "", "file to redirect stdout into")
	return cmd
}

// newFallbackDemoCommand runs a primary stage and, if it fails, a fallback
// stage instead — exercising Group's fallback-pipeline semantics.
func newFallbackDemoCommand() *cobra.Command {
	var primary, fallback string

	cmd := &cobra.Command{
		Use:   "fallback-demo",
		Short: "Run --primary; on failure, run --fallback instead",
		RunE: func(cmd *cobra.Command, args []string) error {
			if primary == "" || fallback == "" {
				return fmt.Errorf("both --primary and --fallback are required")
			}

			p := cmdpipe.NewPipeline().Pipe(argsToStage(primary))
			f := cmdpipe.NewPipeline().Pipe(argsToStage(fallback))

			out, err := cmdpipe.NewGroup().Add(p, f).RunString()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&primary, "primary", "", "primary stage")
	cmd.Flags().StringVar(&fallback, "fallback", "", "fallback stage, run only if primary fails")
	return cmd
}

func argsToStage(s string) *cmdpipe.Stage {
	st := cmdpipe.NewStage()
	for _, tok := range splitFields(s) {
		st.AddArg(tok)
	}
	return st
}

// splitFields is a bare whitespace tokenizer for --stage values. It is
// deliberately not a shell-syntax parser: quoting, globbing and expansion
// are out of scope for this core, flags only describe argv directly.
func splitFields(s string) []string {
	return strings.Fields(s)
}
