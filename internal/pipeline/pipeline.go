// Package pipeline drives a script through every pass, from YAML text to
// assembled output files.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/assemble"
	"github.com/nativeshell/nshell/internal/astgen"
	"github.com/nativeshell/nshell/internal/codegen"
	"github.com/nativeshell/nshell/internal/corelib"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
	"github.com/nativeshell/nshell/internal/script"
)

// CodeUnknownAddIn reports a requires entry naming no available add-in.
const CodeUnknownAddIn = "PIP001"

// Options configure one pipeline run. The zero value is usable.
type Options struct {
	// AddIns are the bundles available beyond the always-loaded core.
	AddIns []*addin.AddIn
	// MaxRounds caps macro expansion; zero means the default.
	MaxRounds int
	// Logger receives per-pass progress. Zero value logs nowhere useful,
	// so callers normally pass a configured logger.
	Logger zerolog.Logger
}

// Result is the outcome of a run.
type Result struct {
	// Name and Version are the script's declared identity.
	Name    string
	Version string
	// Rounds is the number of macro expansion rounds performed.
	Rounds int
	// Problems is the full diagnostic list, in collection order.
	Problems []*problem.Problem
	// Output holds the generated files, or nil when any error-level
	// problem was found.
	Output *assemble.Output
}

// Valid reports whether the run found no error-level problems.
func (r *Result) Valid() bool { return !problem.HasErrors(r.Problems) }

// Run parses and compiles one script. A returned error means the pipeline
// itself could not proceed; script mistakes come back as Problems on the
// Result instead.
func Run(sourceName string, src []byte, opts Options) (*Result, error) {
	log := opts.Logger.With().
		Str("run_id", uuid.Must(uuid.NewV7()).String()).
		Str("source", sourceName).
		Logger()

	var collected problem.Collector
	result := &Result{}

	parsed, parseProblems, err := script.Parse(sourceName, src)
	if err != nil {
		return nil, err
	}
	collected.Add(parseProblems...)
	result.Name = parsed.Name
	result.Version = parsed.Version
	log.Debug().Str("name", parsed.Name).Str("version", parsed.Version).
		Int("problems", len(parseProblems)).Msg("script parsed")

	bundles, requireProblems := selectAddIns(parsed.Requires, opts.AddIns)
	collected.Add(requireProblems...)

	reg, err := registry.New(bundles)
	if err != nil {
		return nil, fmt.Errorf("loading add-ins: %w", err)
	}

	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = astgen.DefaultMaxRounds
	}
	rounds, err := astgen.Expand(parsed.Root, reg, maxRounds)
	if err != nil {
		return nil, err
	}
	result.Rounds = rounds
	log.Debug().Int("rounds", rounds).Msg("macros expanded")

	tree := astgen.Assign(parsed.Root, reg)
	astgen.Validate(tree)

	root, pruned, treeProblems, err := astgen.Finalize(tree)
	collected.Add(treeProblems...)
	if err != nil {
		if errors.Is(err, astgen.ErrInvalidTree) {
			result.Problems = collected.Problems()
			log.Debug().Int("problems", len(result.Problems)).Msg("tree invalid, no output")
			return result, nil
		}
		return nil, err
	}

	refs, buildProblems := codegen.Build(root, pruned)
	collected.Add(buildProblems...)

	out, asmProblems := assemble.Assemble(
		assemble.Meta{Name: parsed.Name, Version: parsed.Version}, root, refs,
	)
	collected.Add(asmProblems...)

	result.Problems = collected.Problems()
	if collected.Valid() {
		result.Output = out
		log.Debug().Msg("output assembled")
	} else {
		log.Debug().Int("problems", len(result.Problems)).Msg("problems found, no output")
	}
	return result, nil
}

// selectAddIns resolves a script's requires list against the available
// bundles. The core bundle is always loaded; requiring it again is a no-op.
func selectAddIns(requires []string, extra []*addin.AddIn) ([]*addin.AddIn, []*problem.Problem) {
	core := corelib.New()
	available := map[string]*addin.AddIn{core.IncludeName: core}
	for _, bundle := range extra {
		available[bundle.IncludeName] = bundle
	}

	selected := []*addin.AddIn{core}
	loaded := map[string]bool{core.IncludeName: true}
	var problems []*problem.Problem
	for _, name := range requires {
		if loaded[name] {
			continue
		}
		bundle, ok := available[name]
		if !ok {
			problems = append(problems, problem.Validation(
				CodeUnknownAddIn, problem.Path{"requires"},
				"no add-in named %q is available", name,
			))
			continue
		}
		loaded[name] = true
		selected = append(selected, bundle)
	}
	return selected, problems
}
