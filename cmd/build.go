package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nativeshell/nshell/internal/pipeline"
)

// BuildIO reads the script and writes the generated files for the build
// command.
type BuildIO interface {
	ReadScript(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
}

// NewBuildCmd creates the build subcommand.
func NewBuildCmd(io BuildIO) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "build <script.yaml>",
		Short:        "Compile a script into generated source files",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			scriptPath := args[0]
			outDir, _ := cmd.Flags().GetString("out")
			verbose, _ := cmd.Flags().GetBool("verbose")
			maxRounds, _ := cmd.Flags().GetInt("max-rounds")

			src, err := io.ReadScript(scriptPath)
			if err != nil {
				return fmt.Errorf("reading script: %w", err)
			}

			result, err := pipeline.Run(filepath.Base(scriptPath), src, pipeline.Options{
				MaxRounds: maxRounds,
				Logger:    newLogger(verbose),
			})
			if err != nil {
				return err
			}

			printProblems(cmd, result.Problems)
			if result.Output == nil {
				return fmt.Errorf("script %s has errors, nothing generated", scriptPath)
			}

			if outDir == "" {
				outDir = result.Name
			}
			if err := io.MkdirAll(outDir); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
			for name, text := range result.Output.Files() {
				path := filepath.Join(outDir, name)
				if err := io.WriteFile(path, []byte(text)); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated %s v%s into %s\n", result.Name, result.Version, outDir)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (defaults to the script name)")
	cmd.Flags().Bool("verbose", false, "Log pipeline progress to stderr")
	cmd.Flags().Int("max-rounds", 0, "Macro expansion round cap (0 uses the default)")

	return cmd
}

// osBuildIO implements BuildIO using OS file I/O.
type osBuildIO struct{}

func newDefaultBuildIO() *osBuildIO { return &osBuildIO{} }

func (*osBuildIO) ReadScript(path string) ([]byte, error) { return os.ReadFile(path) }

func (*osBuildIO) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (*osBuildIO) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }
