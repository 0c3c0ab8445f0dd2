// Package cmd implements the nshell CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nativeshell/nshell/internal/problem"
)

// BuildInfo identifies the binary, injected by the build.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// String renders the version line shown by --version.
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}

// NewRootCmd creates the root nshell command with all subcommands registered.
func NewRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "nshell",
		Short:         "nshell - generate standalone programs from typed YAML scripts",
		Version:       info.String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE:          rootRunE,
	}
	root.AddCommand(NewBuildCmd(newDefaultBuildIO()))
	root.AddCommand(NewCheckCmd(newDefaultCheckIO()))
	return root
}

func rootRunE(_ *cobra.Command, _ []string) error {
	return nil
}

// newLogger builds the per-run logger. Quiet unless verbose is set.
func newLogger(verbose bool) zerolog.Logger {
	if !verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()
}

// printProblems writes each problem to stderr in human-readable form.
func printProblems(cmd *cobra.Command, problems []*problem.Problem) {
	for _, p := range problems {
		fmt.Fprintln(cmd.ErrOrStderr(), p.String())
	}
}
