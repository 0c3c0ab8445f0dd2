package astgen_test

import (
	"testing"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
	"github.com/nativeshell/nshell/internal/syntax"
)

// The test catalog: a flag field type, a bounded string list, a box
// construct carrying one field, a pair construct holding the list, plus
// one well-behaved macro and one self-producing macro.
var (
	flagType = &nodetype.ConstructType{ID: "t.flag", Name: "flag"}

	strListType = &nodetype.ListType{
		ID:    "t.str-list",
		Name:  "bounded strings",
		Items: &nodetype.Parameter{Key: "item", Title: "item", Type: nodetype.StringType, Required: true},
		Min:   1,
		Max:   intPtr(2),
	}

	boxType = &nodetype.ConstructType{
		ID:   "t.box",
		Name: "box",
		Parameters: []*nodetype.Parameter{
			{Key: "label", Title: "label", Type: nodetype.StringType, Required: true},
			{Key: "size", Title: "size", Type: nodetype.IntegerType},
		},
		Fields: []*nodetype.Field{
			{Key: "mark", Title: "mark", Type: flagType},
		},
	}

	pairType = &nodetype.ConstructType{
		ID:   "t.pair",
		Name: "pair",
		Parameters: []*nodetype.Parameter{
			{Key: "items", Title: "items", Type: strListType, Required: true},
		},
	}
)

func intPtr(v int) *int { return &v }

// stubHandler registers a type with no generated code.
type stubHandler struct {
	typ nodetype.Type
}

func (h *stubHandler) Type() nodetype.Type                { return h.typ }
func (h *stubHandler) SharedCode() []*addin.GeneratedCode { return nil }
func (h *stubHandler) InstanceCode(*syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	return nil, nil
}

// onceMacro rewrites its node into a box labeled "expanded".
type onceMacro struct{}

func (onceMacro) Meta() *nodetype.MetaType {
	return &nodetype.MetaType{ID: "t.once", Name: "once"}
}

func (onceMacro) Translate(node parsetree.Node) (parsetree.Node, []*problem.Problem) {
	id := node.ID()
	out := parsetree.NewParameterNode(id, "t.box")
	out.Set("label", parsetree.NewSimpleNode(parsetree.NodeID{
		Source: id.Source.Child("label"),
		Ref:    id.Ref.Child("label"),
	}, nodetype.BasicString, "expanded"))
	return out, nil
}

// selfMacro rewrites its node into another use of itself and never
// reaches a fixed point.
type selfMacro struct{}

func (selfMacro) Meta() *nodetype.MetaType {
	return &nodetype.MetaType{ID: "t.self", Name: "self"}
}

func (selfMacro) Translate(node parsetree.Node) (parsetree.Node, []*problem.Problem) {
	return parsetree.NewParameterNode(node.ID(), "t.self"), nil
}

// newTestRegistry builds a fresh registry over the test catalog.
func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]*addin.AddIn{{
		Name:        "test catalog",
		IncludeName: "test",
		Types: []addin.TypeHandler{
			&stubHandler{typ: flagType},
			&stubHandler{typ: strListType},
			&stubHandler{typ: boxType},
			&stubHandler{typ: pairType},
		},
		Metas: []addin.MetaHandler{onceMacro{}, selfMacro{}},
	}})
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}
	return reg
}

// newRoot builds an empty script root.
func newRoot() *parsetree.ParameterNode {
	return parsetree.NewParameterNode(parsetree.NodeID{
		Source: problem.Path{"s"},
		Ref:    problem.Path{},
	}, "")
}

// nid builds a NodeID whose source is the ref prefixed with the script name.
func nid(ref ...string) parsetree.NodeID {
	source := problem.Path{"s"}
	for _, elem := range ref {
		source = source.Child(elem)
	}
	return parsetree.NodeID{Source: source, Ref: problem.Path(ref)}
}

// codesOf extracts problem codes in order.
func codesOf(problems []*problem.Problem) []string {
	out := make([]string, len(problems))
	for i, p := range problems {
		out[i] = p.Code
	}
	return out
}
