package astgen

import (
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
)

// Validate re-checks the typed tree for structural and type consistency,
// attaching problems in place. It walks pre-order and only examines nodes
// that are still valid; the assigner already diagnosed the rest. The
// parent-context checks re-derive context through deriveContext rather
// than trusting the cached copy, so the two passes verify each other.
func Validate(tree *TypedTree) *TypedTree {
	parsetree.WalkPre(tree.Root, func(node parsetree.Node) {
		if !node.Valid() {
			return
		}
		if node.Parent() == nil {
			validateRoot(node)
			return
		}
		typ := node.AssignedType()
		if typ == nil {
			node.AddProblem(problem.Validation(
				CodeNoType, node.ID().Source,
				"no type discovered for %q", node.TypeID(),
			))
			return
		}
		ctx, _ := deriveContext(node)
		if ctx != nil && !ctx.Allows(typ) {
			node.AddProblem(problem.Validation(
				CodeTypeMismatch, node.ID().Source,
				"parent key %q requires type %q, but node has type %q",
				node.Parent().Key, contextName(ctx), typ.TypeID(),
			))
		}
		switch n := node.(type) {
		case *parsetree.SimpleNode:
			validateSimple(n)
		case *parsetree.ListNode:
			validateList(n, typ)
		case *parsetree.ParameterNode:
			validateParameter(n, typ)
		}
	})
	return tree
}

// contextName renders the expected-type side of a mismatch message.
func contextName(p *nodetype.Parameter) string {
	if p.AnyConstruct {
		return "(any construct)"
	}
	if p.Type == nil {
		return "(unresolved)"
	}
	return p.Type.TypeID()
}

// validateSimple checks the stored constant against its declared basic
// type with the runtime predicate for that type.
func validateSimple(node *parsetree.SimpleNode) {
	if !nodetype.CheckBasicValue(node.BasicID, node.Value) {
		node.AddProblem(problem.Validation(
			CodeBadSimpleValue, node.ID().Source,
			"node declared as %q, but the value is %T", node.BasicID, node.Value,
		))
	}
}

// validateList checks the item count against the declared bounds. Each
// bound is checked and reported independently.
func validateList(node *parsetree.ListNode, typ nodetype.Type) {
	lt, ok := typ.(*nodetype.ListType)
	if !ok {
		node.AddProblem(problem.Validation(
			CodeTypeMismatch, node.ID().Source,
			"node is a list, but its assigned type %q is not a list type", typ.TypeID(),
		))
		return
	}
	count := node.Len()
	if count < lt.Min {
		node.AddProblem(problem.Validation(
			CodeListTooShort, node.ID().Source,
			"list requires at least %d items, but it has %d", lt.Min, count,
		))
	}
	if lt.Max != nil && count > *lt.Max {
		node.AddProblem(problem.Validation(
			CodeListTooLong, node.ID().Source,
			"list allows at most %d items, but it has %d", *lt.Max, count,
		))
	}
}

// validateParameter checks declared-key coverage: every required declared
// key present, every present key declared. Missing-key problems attach to
// the node; unknown-key problems attach to the offending child.
func validateParameter(node *parsetree.ParameterNode, typ nodetype.Type) {
	ct, ok := typ.(*nodetype.ConstructType)
	if !ok {
		node.AddProblem(problem.Validation(
			CodeTypeMismatch, node.ID().Source,
			"node holds keyed parameters, but its assigned type %q is not a construct type", typ.TypeID(),
		))
		return
	}
	seen := map[string]bool{}
	for _, child := range node.Children() {
		if ct.Parameter(child.Key) == nil {
			// The assigner already flagged this child when deriving its
			// context; only report here if it slipped through still valid.
			if child.Node.Valid() {
				child.Node.AddProblem(problem.Validation(
					CodeUnknownKey, child.Node.ID().Source,
					"type %q does not declare parameter %q", ct.TypeID(), child.Key,
				))
			}
			continue
		}
		seen[child.Key] = true
	}
	for _, decl := range ct.Parameters {
		if decl.Required && !seen[decl.Key] {
			node.AddProblem(problem.Validation(
				CodeMissingKey, node.ID().Source,
				"required parameter %q is missing", decl.Key,
			))
		}
	}
}

// validateRoot requires the tree root to be a parameter node. Anything
// else means the parser broke its contract.
func validateRoot(node parsetree.Node) {
	if _, ok := node.(*parsetree.ParameterNode); !ok {
		node.AddProblem(problem.Validation(
			CodeRootNotParameter, node.ID().Source,
			"root node must be a parameter node, found type %q", node.TypeID(),
		))
	}
}
