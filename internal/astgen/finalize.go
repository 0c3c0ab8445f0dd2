package astgen

import (
	"errors"
	"fmt"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
	"github.com/nativeshell/nshell/internal/syntax"
)

// ErrInvalidTree is returned when finalization is asked to lower a tree
// that still carries error-level problems.
var ErrInvalidTree = errors.New("tree has outstanding errors")

// Finalize lowers a fully valid typed tree into the immutable syntax tree
// and prunes the registry to the referenced-type set.
//
// The first post-order sweep collects every remaining problem; any
// error-level problem aborts lowering (the collected diagnostics are still
// returned). The second sweep builds syntax nodes bottom-up, memoized by
// parsed-node pointer so each parsed node maps to exactly one output node.
// Construct-typed nodes additionally materialize one synthetic child per
// declared field, making fields and parameters uniformly referenceable.
func Finalize(tree *TypedTree) (*syntax.Node, *registry.Registry, []*problem.Problem, error) {
	var collected []*problem.Problem
	parsetree.WalkPost(tree.Root, func(node parsetree.Node) {
		collected = append(collected, node.Problems()...)
	})
	if problem.HasErrors(collected) {
		return nil, nil, collected, ErrInvalidTree
	}

	built := map[parsetree.Node]*syntax.Node{}
	parsetree.WalkPost(tree.Root, func(node parsetree.Node) {
		if _, ok := node.(*parsetree.SimpleNode); ok {
			// Simple values are inlined into their parent, not built.
			return
		}
		values := map[string]syntax.Value{}
		for _, child := range node.Children() {
			if simple, ok := child.Node.(*parsetree.SimpleNode); ok {
				values[child.Key] = syntax.Literal{BasicID: simple.BasicID, Val: simple.Value}
				continue
			}
			childNode, ok := built[child.Node]
			if !ok {
				// Children are built before parents; a gap here is a
				// walker bug, not a script error.
				panic(fmt.Sprintf(
					"astgen: child %q of %s was not lowered", child.Key, node.ID().Source,
				))
			}
			values[child.Key] = childNode
		}
		materializeFields(node, values)
		built[node] = syntax.New(node.ID().Source, node.ID().Ref, node.AssignedType(), values)
	})

	root, ok := built[tree.Root]
	if !ok {
		panic("astgen: root node was not lowered")
	}
	return root, tree.Registry.Prune(tree.Referenced()), collected, nil
}

// materializeFields inserts one synthetic zero-argument child per declared
// field of a construct-typed node, whether or not the script referenced it.
func materializeFields(node parsetree.Node, values map[string]syntax.Value) {
	ct, ok := node.AssignedType().(*nodetype.ConstructType)
	if !ok {
		return
	}
	id := node.ID()
	for _, field := range ct.Fields {
		values[field.Key] = syntax.New(
			id.Source.Child(field.Key),
			id.Ref.Child(field.Key),
			field.Type,
			nil,
		)
	}
}
