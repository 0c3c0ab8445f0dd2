package astgen

import (
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
)

// Assign resolves every valid node's type in a single pre-order sweep,
// caching the parent-derived context on each child's parent link as it
// descends. The root node is handled last: its type does not exist in any
// registry and is synthesized from the keys actually present (§ root type
// synthesis), then registered dynamically.
func Assign(root parsetree.Node, reg *registry.Registry) *TypedTree {
	tree := NewTypedTree(root, reg)

	parsetree.WalkPre(root, func(node parsetree.Node) {
		if !node.Valid() {
			return
		}
		if node.Parent() == nil {
			// The root is typed after the sweep.
			if node.TypeID() != "" {
				node.AddProblem(problem.Validation(
					CodeRootTyped, node.ID().Source,
					"root node must have an empty type id; found %q", node.TypeID(),
				))
			}
			return
		}
		assignNode(node, tree)
	})

	synthesizeRootType(tree)
	return tree
}

// assignNode types one non-root node and establishes its children's
// context where the node is a container.
func assignNode(node parsetree.Node, tree *TypedTree) {
	// Resolve the node's own type first.
	switch n := node.(type) {
	case *parsetree.SimpleNode:
		// Declared basic type; no registry lookup.
		node.SetAssignedType(nodetype.BasicTypes[n.BasicID])
	case *parsetree.ParameterNode:
		handler := tree.Registry.TypeHandler(n.TypeID())
		if handler == nil {
			n.AddProblem(problem.Validation(
				CodeUnknownType, n.ID().Source, "unknown type %q", n.TypeID(),
			))
			// Marked invalid; typing does not descend conceptually, and
			// children skip context derivation because this parent has no
			// resolved type.
			return
		}
		typ := handler.Type()
		n.SetAssignedType(typ)
		tree.MarkReferenced(typ)
		markFieldTypes(n, typ, tree)
	case *parsetree.ListNode:
		// No independent registry entry; typed from the parent context
		// below.
	}

	parent := node.Parent()
	if !parent.Node.Valid() {
		return
	}
	if parent.Node.Parent() == nil {
		// Children of the untyped root get their context during root
		// synthesis.
		return
	}
	ctx, prob := deriveContext(node)
	if prob != nil {
		node.AddProblem(prob)
		return
	}
	if ctx == nil {
		return
	}
	parent.SetContext(ctx)
	if ln, ok := node.(*parsetree.ListNode); ok {
		if lt, ok := ctx.Type.(*nodetype.ListType); ok {
			ln.SetAssignedType(lt)
			// Derived once from the declared list type, reused per item.
			ln.SetItemType(lt.Items)
			tree.MarkReferenced(lt)
		}
		// A non-list context for a list node is reported by the
		// validator's re-check, not here.
	}
	if ctx.Type != nil {
		tree.MarkReferenced(ctx.Type)
	}
}

// markFieldTypes marks every declared field's type as referenced. Fields
// are always emitted, so their types must survive pruning even when the
// script never names them.
func markFieldTypes(node parsetree.Node, typ nodetype.Type, tree *TypedTree) {
	ct, ok := typ.(*nodetype.ConstructType)
	if !ok {
		return
	}
	for _, field := range ct.Fields {
		if tree.Registry.TypeHandler(field.Type.TypeID()) == nil {
			node.AddProblem(problem.Validation(
				CodeFieldTypeMissing, node.ID().Source,
				"field %q of type %q declares type %q, which has no handler",
				field.Key, ct.TypeID(), field.Type.TypeID(),
			))
			continue
		}
		tree.MarkReferenced(field.Type)
	}
}
