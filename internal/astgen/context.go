package astgen

import (
	"fmt"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
)

// Problem codes for the typing and validation passes.
const (
	CodeUnknownType      = "TYP001"
	CodeUndefinedKey     = "TYP002"
	CodeFieldTypeMissing = "TYP003"
	CodeRootTyped        = "TYP004"
	CodeMetaAtRoot       = "EXP001"
	CodeTooManyRounds    = "EXP002"
	CodeNoType           = "VAL001"
	CodeTypeMismatch     = "VAL002"
	CodeBadSimpleValue   = "VAL003"
	CodeListTooShort     = "VAL004"
	CodeListTooLong      = "VAL005"
	CodeMissingKey       = "VAL006"
	CodeUnknownKey       = "VAL007"
	CodeRootNotParameter = "VAL008"
	CodeMainMissing      = "GEN001"
)

// deriveContext is the single authoritative answer to "what does the
// parent's type allow at this child's position". Both the assigner and the
// validator use it, so the two passes cannot drift apart.
//
// A list parent yields its derived item descriptor. A parameter parent
// yields the declared parameter whose key matches the child's key, or an
// undefined-key problem when no declaration matches. A nil descriptor with
// a nil problem means no context is derivable here (root child before root
// synthesis, or a parent whose own typing already failed). A non-container
// parent holding children is a parser bug and panics.
func deriveContext(node parsetree.Node) (*nodetype.Parameter, *problem.Problem) {
	parent := node.Parent()
	if parent == nil {
		return nil, nil
	}
	switch p := parent.Node.(type) {
	case *parsetree.ListNode:
		// Derived once from the list's own context, reused per item.
		return p.ItemType(), nil
	case *parsetree.ParameterNode:
		ct, ok := p.AssignedType().(*nodetype.ConstructType)
		if !ok {
			// Root before synthesis, or a parent that failed typing.
			return nil, nil
		}
		decl := ct.Parameter(parent.Key)
		if decl == nil {
			return nil, problem.Validation(
				CodeUndefinedKey, node.ID().Source,
				"node defined under key %q, which type %q does not declare", parent.Key, ct.TypeID(),
			)
		}
		return decl, nil
	default:
		panic(fmt.Sprintf("astgen: non-container node %s has child %s", parent.Node.ID().Source, node.ID().Source))
	}
}
