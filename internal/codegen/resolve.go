package codegen

import (
	"strings"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/problem"
)

// Resolve expands a template into final text by recursive substitution of
// its forward references. An explicit currently-expanding stack detects
// cycles: a target already on the stack stops the descent, emits a
// placeholder, and records a diagnostic naming both ends. Reuse must be
// hierarchical, so a cycle is always an authoring error. The stack depth
// is bounded by the number of distinct (reference, purpose) pairs, itself
// bounded by tree size.
//
// Zero fragments at a referenced (reference, purpose) and more than one
// fragment both yield placeholders plus diagnostics: no merge-order
// semantics exist for multiple fragments, so ambiguity is reported rather
// than guessed at.
func (m *RefMap) Resolve(source problem.Path, tmpl *addin.Template) (string, []*problem.Problem) {
	r := &resolver{refs: m}
	text := r.expand(source, tmpl)
	return text, r.problems
}

// ResolveAt expands the single fragment registered at (ref, purpose).
// Missing or ambiguous fragments report a diagnostic and return "".
func (m *RefMap) ResolveAt(ref problem.Path, purpose addin.Purpose) (string, []*problem.Problem) {
	codes := m.Get(ref, purpose)
	if len(codes) == 0 {
		return "", []*problem.Problem{problem.Validation(
			CodeNoTemplate, ref, "no template found for %q at %s", purpose, ref,
		)}
	}
	if len(codes) > 1 {
		return "", []*problem.Problem{problem.Validation(
			CodeMultipleTemplates, ref, "multiple templates found for %q at %s", purpose, ref,
		)}
	}
	// The target itself opens the expanding stack, so a reference chain
	// leading straight back to it is caught as a cycle.
	r := &resolver{refs: m, expanding: []refKey{{ref: ref.String(), purpose: purpose}}}
	text := r.expand(ref, codes[0].Template)
	return text, r.problems
}

type resolver struct {
	refs     *RefMap
	problems []*problem.Problem
	// expanding is the currently-expanding reference stack.
	expanding []refKey
}

func (r *resolver) expand(source problem.Path, tmpl *addin.Template) string {
	var out strings.Builder
	for _, part := range tmpl.Parts {
		if part.Ref == nil {
			out.WriteString(part.Text)
			continue
		}
		ref := part.Ref
		key := refKey{ref: ref.Target.String(), purpose: ref.Purpose}
		if r.onStack(key) {
			r.problems = append(r.problems, problem.Validation(
				CodeCyclicReference, source,
				"reference %s contains a cyclic lookup to %s", source, ref,
			))
			out.WriteString("<cycle:" + ref.String() + ">")
			continue
		}
		targets := r.refs.Get(ref.Target, ref.Purpose)
		if len(targets) == 0 {
			r.problems = append(r.problems, problem.Validation(
				CodeNoTemplate, ref.Target,
				"no template found for %q at %s", ref.Purpose, ref.Target,
			))
			out.WriteString("<no-template:" + ref.String() + ">")
			continue
		}
		if len(targets) > 1 {
			r.problems = append(r.problems, problem.Validation(
				CodeMultipleTemplates, ref.Target,
				"multiple templates found for %q at %s", ref.Purpose, ref.Target,
			))
			out.WriteString("<ambiguous:" + ref.String() + ">")
			continue
		}
		r.expanding = append(r.expanding, key)
		out.WriteString(r.expand(ref.Target, targets[0].Template))
		r.expanding = r.expanding[:len(r.expanding)-1]
	}
	return out.String()
}

func (r *resolver) onStack(key refKey) bool {
	for _, k := range r.expanding {
		if k == key {
			return true
		}
	}
	return false
}
