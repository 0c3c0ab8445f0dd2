// Package codegen collects per-node, purpose-tagged code fragments and
// resolves cross-node references into final text.
package codegen

import (
	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
	"github.com/nativeshell/nshell/internal/syntax"
)

// Problem codes for fragment collection and template resolution.
const (
	CodeCyclicReference   = "GEN002"
	CodeNoTemplate        = "GEN003"
	CodeMultipleTemplates = "GEN004"
)

// refKey indexes fragments by (reference, purpose).
type refKey struct {
	ref     string
	purpose addin.Purpose
}

// RefMap maps (reference, purpose) pairs to their ordered fragment lists.
type RefMap struct {
	codes map[refKey][]*addin.GeneratedCode
	// order preserves deterministic insertion order for global purposes.
	order []*addin.GeneratedCode
}

// NewRefMap creates an empty fragment map.
func NewRefMap() *RefMap {
	return &RefMap{codes: map[refKey][]*addin.GeneratedCode{}}
}

// Add appends a fragment under its (reference, purpose) key.
func (m *RefMap) Add(code *addin.GeneratedCode) {
	key := refKey{ref: code.Ref.String(), purpose: code.Purpose}
	m.codes[key] = append(m.codes[key], code)
	m.order = append(m.order, code)
}

// Get returns the fragments at (ref, purpose), in insertion order.
func (m *RefMap) Get(ref problem.Path, purpose addin.Purpose) []*addin.GeneratedCode {
	return m.codes[refKey{ref: ref.String(), purpose: purpose}]
}

// AllForPurpose returns every fragment with the given purpose, in
// collection order. Used for the globally-collected purposes.
func (m *RefMap) AllForPurpose(purpose addin.Purpose) []*addin.GeneratedCode {
	var out []*addin.GeneratedCode
	for _, code := range m.order {
		if code.Purpose == purpose {
			out = append(out, code)
		}
	}
	return out
}

// Build collects the program's fragments: each surviving handler's shared
// code once, then instance code for every occurring syntax node. The node
// walk is pre-order over sorted keys with an explicit stack, so collection
// order (and therefore output) is reproducible.
func Build(root *syntax.Node, reg *registry.Registry) (*RefMap, []*problem.Problem) {
	out := NewRefMap()
	var problems []*problem.Problem

	for _, handler := range reg.TypeHandlers() {
		for _, code := range handler.SharedCode() {
			out.Add(code)
		}
	}

	stack := []*syntax.Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if handler := reg.TypeHandler(node.Type().TypeID()); handler != nil {
			codes, instProblems := handler.InstanceCode(node)
			problems = append(problems, instProblems...)
			if !problem.HasErrors(instProblems) {
				for _, code := range codes {
					out.Add(code)
				}
			}
		}

		keys := node.Keys()
		for i := len(keys) - 1; i >= 0; i-- {
			if child, ok := node.Value(keys[i]).(*syntax.Node); ok {
				stack = append(stack, child)
			}
		}
	}
	return out, problems
}
