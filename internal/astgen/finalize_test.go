package astgen_test

import (
	"errors"
	"testing"

	"github.com/nativeshell/nshell/internal/astgen"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// TestFinalizeInvalidTree verifies that outstanding error problems abort
// lowering and come back collected.
func TestFinalizeInvalidTree(t *testing.T) {
	root := newRoot()
	box := parsetree.NewParameterNode(nid("main"), "t.box")
	root.Set("main", box)

	tree := astgen.Validate(astgen.Assign(root, newTestRegistry(t)))
	node, _, problems, err := astgen.Finalize(tree)
	if !errors.Is(err, astgen.ErrInvalidTree) {
		t.Fatalf("Finalize() error = %v, want ErrInvalidTree", err)
	}
	if node != nil {
		t.Error("Finalize() must not return a tree on error")
	}
	if !problem.HasErrors(problems) {
		t.Error("collected problems must include the blocking errors")
	}
}

// TestFinalizeLowersTree verifies literal inlining, field materialization,
// and registry pruning on a valid tree.
func TestFinalizeLowersTree(t *testing.T) {
	root := newRoot()
	box := parsetree.NewParameterNode(nid("main"), "t.box")
	box.Set("label", parsetree.NewSimpleNode(nid("main", "label"), nodetype.BasicString, "hi"))
	root.Set("main", box)

	tree := astgen.Validate(astgen.Assign(root, newTestRegistry(t)))
	node, pruned, problems, err := astgen.Finalize(tree)
	if err != nil {
		t.Fatalf("Finalize() error = %v (problems %v)", err, problems)
	}

	if !node.Ref().Equal(problem.Path{}) {
		t.Errorf("root ref = %s, want the empty path", node.Ref())
	}
	main, ok := node.Value("main").(*syntax.Node)
	if !ok {
		t.Fatalf("main = %T, want *syntax.Node", node.Value("main"))
	}
	if main.Type() != nodetype.Type(boxType) {
		t.Errorf("main type = %v, want t.box", main.Type())
	}

	label, ok := main.Value("label").(syntax.Literal)
	if !ok || label.BasicID != nodetype.BasicString || label.Val != "hi" {
		t.Errorf("label = %#v, want the inlined string literal %q", main.Value("label"), "hi")
	}

	mark, ok := main.Value("mark").(*syntax.Node)
	if !ok {
		t.Fatalf("declared field %q was not materialized", "mark")
	}
	if mark.Type() != nodetype.Type(flagType) {
		t.Errorf("mark type = %v, want t.flag", mark.Type())
	}
	if !mark.Ref().Equal(problem.Path{"main", "mark"}) {
		t.Errorf("mark ref = %s, want main/mark", mark.Ref())
	}
	if mark.Len() != 0 {
		t.Errorf("mark.Len() = %d, want 0", mark.Len())
	}
	if got := len(main.Keys()); got != 2 {
		t.Errorf("len(main.Keys()) = %d, want 2 (label + mark)", got)
	}

	for _, id := range []string{"t.box", "t.flag", astgen.RootTypeID} {
		if pruned.TypeHandler(id) == nil {
			t.Errorf("pruned registry is missing %q", id)
		}
	}
	for _, id := range []string{"t.pair", "t.str-list"} {
		if pruned.TypeHandler(id) != nil {
			t.Errorf("pruned registry still holds unused %q", id)
		}
	}
}

// TestFinalizeFieldCountMatchesDeclaration verifies every declared field
// becomes a child, whether or not the script names it.
func TestFinalizeFieldCountMatchesDeclaration(t *testing.T) {
	wide := &nodetype.ConstructType{
		ID:   "t.wide",
		Name: "wide",
		Fields: []*nodetype.Field{
			{Key: "a", Title: "a", Type: flagType},
			{Key: "b", Title: "b", Type: flagType},
			{Key: "c", Title: "c", Type: flagType},
		},
	}
	node := parsetree.NewParameterNode(nid("main"), "t.wide")
	node.SetAssignedType(wide)

	root := newRoot()
	root.Set("main", node)
	root.SetAssignedType(&nodetype.ConstructType{ID: "-r", Name: "r"})

	tree := astgen.NewTypedTree(root, newTestRegistry(t))
	lowered, _, _, err := astgen.Finalize(tree)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	main := lowered.Value("main").(*syntax.Node)
	if main.Len() != len(wide.Fields) {
		t.Errorf("main.Len() = %d, want %d materialized fields", main.Len(), len(wide.Fields))
	}
}
