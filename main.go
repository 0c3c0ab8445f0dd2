// Package main is the entry point for the nshell CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/nativeshell/nshell/cmd"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(cmd.BuildInfo{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
