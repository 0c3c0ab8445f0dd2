package astgen

import (
	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// RootTypeID is the reserved id of the per-script synthesized root type.
const RootTypeID = "-root"

// MainKey is the top-level key every script must define.
const MainKey = "main"

// synthesizeRootType fabricates the root's construct type from the
// top-level keys actually present: one required parameter per key,
// constrained to exactly the type that key resolved to. No external schema
// exists for a whole script, so this is built fresh per run and registered
// dynamically. Colliding with a registered id is a pipeline bug and the
// registry panics.
func synthesizeRootType(tree *TypedTree) {
	root, ok := tree.Root.(*parsetree.ParameterNode)
	if !ok {
		// Reported by the validator's root check.
		return
	}
	if !root.Valid() {
		return
	}

	params := make([]*nodetype.Parameter, 0, root.Len())
	for _, child := range root.Children() {
		params = append(params, &nodetype.Parameter{
			Key:      child.Key,
			Title:    "top-level " + child.Key,
			Type:     child.Node.AssignedType(),
			Required: true,
		})
	}
	rootType := &nodetype.ConstructType{
		ID:         RootTypeID,
		Name:       "parsed script",
		Doc:        "the synthesized type of the script's top level",
		Parameters: params,
	}

	root.SetAssignedType(rootType)
	tree.Registry.AddDynamic(&rootHandler{typ: rootType})
	tree.MarkReferenced(rootType)

	// The root's children could not derive context during the main sweep;
	// fill the cache now that the root type exists.
	for _, child := range root.Children() {
		if decl := rootType.Parameter(child.Key); decl != nil {
			child.Node.Parent().SetContext(decl)
		}
	}
}

// rootHandler generates the program entry: it requires a "main" key and
// delegates the root's execute fragment to main's own execute fragment.
type rootHandler struct {
	typ *nodetype.ConstructType
}

func (h *rootHandler) Type() nodetype.Type { return h.typ }

func (h *rootHandler) SharedCode() []*addin.GeneratedCode { return nil }

func (h *rootHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	main, ok := node.Value(MainKey).(*syntax.Node)
	if !ok {
		return nil, []*problem.Problem{problem.Validation(
			CodeMainMissing, node.Source(),
			"%q must be included as a top-level element in the script", MainKey,
		)}
	}
	code := &addin.GeneratedCode{
		Ref:     node.Ref(),
		Purpose: addin.PurposeExecute,
		Template: addin.NewTemplate(
			addin.Reference(main.Ref(), addin.PurposeExecute),
		),
	}
	return []*addin.GeneratedCode{code}, nil
}
