package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nativeshell/nshell/internal/pipeline"
	"github.com/nativeshell/nshell/internal/problem"
)

// CheckIO reads the script for the check command.
type CheckIO interface {
	ReadScript(path string) ([]byte, error)
}

// checkOutput is the JSON output schema for the check command.
type checkOutput struct {
	Version  string             `json:"version"`
	Name     string             `json:"name"`
	Valid    bool               `json:"valid"`
	Problems []*problem.Problem `json:"problems"`
}

// NewCheckCmd creates the check subcommand: the full pipeline runs but
// nothing is written to disk.
func NewCheckCmd(io CheckIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check <script.yaml>",
		Short:        "Compile a script and report problems without writing output",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath := args[0]
			jsonMode, _ := cmd.Flags().GetBool("json")
			verbose, _ := cmd.Flags().GetBool("verbose")

			src, err := io.ReadScript(scriptPath)
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}

			result, err := pipeline.Run(filepath.Base(scriptPath), src, pipeline.Options{
				Logger: newLogger(verbose),
			})
			if err != nil {
				return err
			}

			if jsonMode {
				problems := result.Problems
				if problems == nil {
					problems = []*problem.Problem{}
				}
				out := checkOutput{
					Version:  "1",
					Name:     result.Name,
					Valid:    result.Valid(),
					Problems: problems,
				}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				printProblems(cmd, result.Problems)
			}

			if !result.Valid() {
				return fmt.Errorf("script %s has errors", scriptPath)
			}
			if !jsonMode {
				fmt.Fprintf(cmd.OutOrStdout(), "%s v%s is valid\n", result.Name, result.Version)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output result as JSON")
	cmd.Flags().Bool("verbose", false, "Log pipeline progress to stderr")

	return cmd
}

// osCheckIO implements CheckIO using OS file I/O.
type osCheckIO struct{}

func newDefaultCheckIO() *osCheckIO { return &osCheckIO{} }

func (*osCheckIO) ReadScript(path string) ([]byte, error) { return os.ReadFile(path) }
