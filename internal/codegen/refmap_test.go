package codegen_test

import (
	"testing"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/codegen"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
	"github.com/nativeshell/nshell/internal/syntax"
)

// buildHandler emits one shared import plus one execute fragment per node,
// or only a problem when fail is set.
type buildHandler struct {
	typ  *nodetype.ConstructType
	fail bool
}

func (h *buildHandler) Type() nodetype.Type { return h.typ }

func (h *buildHandler) SharedCode() []*addin.GeneratedCode {
	return []*addin.GeneratedCode{code(
		problem.Path{h.typ.ID}, addin.PurposeDeclareImport, addin.Text(`"fmt"`),
	)}
}

func (h *buildHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	if h.fail {
		return []*addin.GeneratedCode{
				code(node.Ref(), addin.PurposeExecute, addin.Text("must not appear")),
			}, []*problem.Problem{
				problem.Validation("TST001", node.Source(), "refused"),
			}
	}
	return []*addin.GeneratedCode{
		code(node.Ref(), addin.PurposeExecute, addin.Text("go()")),
	}, nil
}

// TestBuildCollectsSharedAndInstanceCode verifies fragment collection over
// a small two-node tree.
func TestBuildCollectsSharedAndInstanceCode(t *testing.T) {
	typ := &nodetype.ConstructType{ID: "t.cmd", Name: "cmd"}
	reg, err := registry.New([]*addin.AddIn{{
		Name:  "test",
		Types: []addin.TypeHandler{&buildHandler{typ: typ}},
	}})
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}

	child := syntax.New(problem.Path{"s", "main"}, problem.Path{"main"}, typ, nil)
	root := syntax.New(problem.Path{"s"}, problem.Path{}, typ,
		map[string]syntax.Value{"main": child})

	refs, problems := codegen.Build(root, reg)
	if len(problems) != 0 {
		t.Fatalf("problems = %v, want none", problems)
	}

	if got := refs.Get(problem.Path{"main"}, addin.PurposeExecute); len(got) != 1 {
		t.Errorf("fragments at main/execute = %d, want 1", len(got))
	}
	if got := refs.Get(problem.Path{}, addin.PurposeExecute); len(got) != 1 {
		t.Errorf("fragments at //execute = %d, want 1", len(got))
	}
	if got := refs.AllForPurpose(addin.PurposeDeclareImport); len(got) != 1 {
		t.Errorf("shared imports = %d, want exactly one per surviving handler", len(got))
	}
}

// TestBuildSuppressesFailingFragments verifies that error-level instance
// problems keep the fragments out of the map.
func TestBuildSuppressesFailingFragments(t *testing.T) {
	typ := &nodetype.ConstructType{ID: "t.bad", Name: "bad"}
	reg, err := registry.New([]*addin.AddIn{{
		Name:  "test",
		Types: []addin.TypeHandler{&buildHandler{typ: typ, fail: true}},
	}})
	if err != nil {
		t.Fatalf("registry.New() error = %v", err)
	}

	root := syntax.New(problem.Path{"s"}, problem.Path{}, typ, nil)
	refs, problems := codegen.Build(root, reg)
	if len(problems) != 1 || problems[0].Code != "TST001" {
		t.Fatalf("problems = %v, want exactly the handler's refusal", problems)
	}
	if got := refs.Get(problem.Path{}, addin.PurposeExecute); len(got) != 0 {
		t.Errorf("fragments at //execute = %d, want 0 (suppressed)", len(got))
	}
}
