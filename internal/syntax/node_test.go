package syntax_test

import (
	"testing"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

var boxType = &nodetype.ConstructType{ID: "t.box", Name: "box"}

// TestNewCopiesValueMap verifies a node is insulated from later mutation
// of the map it was built from.
func TestNewCopiesValueMap(t *testing.T) {
	values := map[string]syntax.Value{
		"label": syntax.Literal{BasicID: nodetype.BasicString, Val: "a"},
	}
	node := syntax.New(problem.Path{"s", "main"}, problem.Path{"main"}, boxType, values)

	values["label"] = syntax.Literal{BasicID: nodetype.BasicString, Val: "changed"}
	values["extra"] = syntax.Literal{BasicID: nodetype.BasicString, Val: "x"}

	got, ok := node.Value("label").(syntax.Literal)
	if !ok || got.Val != "a" {
		t.Errorf("Value(label) = %v, want literal \"a\"", node.Value("label"))
	}
	if node.Value("extra") != nil {
		t.Error("Value(extra) != nil, want nil after post-construction insert")
	}
	if node.Len() != 1 {
		t.Errorf("Len() = %d, want 1", node.Len())
	}
}

// TestKeysSorted verifies deterministic key iteration.
func TestKeysSorted(t *testing.T) {
	node := syntax.New(problem.Path{"s"}, problem.Path{}, boxType, map[string]syntax.Value{
		"c": syntax.Literal{BasicID: nodetype.BasicInteger, Val: 3},
		"a": syntax.Literal{BasicID: nodetype.BasicInteger, Val: 1},
		"b": syntax.Literal{BasicID: nodetype.BasicInteger, Val: 2},
	})
	got := node.Keys()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

// TestOrderedItemsStopsAtGap verifies index-keyed iteration ends at the
// first missing index.
func TestOrderedItemsStopsAtGap(t *testing.T) {
	node := syntax.New(problem.Path{"s"}, problem.Path{}, boxType, map[string]syntax.Value{
		"0": syntax.Literal{BasicID: nodetype.BasicString, Val: "first"},
		"1": syntax.Literal{BasicID: nodetype.BasicString, Val: "second"},
		"3": syntax.Literal{BasicID: nodetype.BasicString, Val: "orphan"},
	})
	items := node.OrderedItems()
	if len(items) != 2 {
		t.Fatalf("len(OrderedItems()) = %d, want 2", len(items))
	}
	if got := items[1].(syntax.Literal).Val; got != "second" {
		t.Errorf("items[1] = %v, want \"second\"", got)
	}
}

// TestNestedNodeValue verifies a child node is returned as a *Node value.
func TestNestedNodeValue(t *testing.T) {
	child := syntax.New(problem.Path{"s", "main", "inner"}, problem.Path{"main", "inner"}, boxType, nil)
	parent := syntax.New(problem.Path{"s", "main"}, problem.Path{"main"}, boxType, map[string]syntax.Value{
		"inner": child,
	})
	got, ok := parent.Value("inner").(*syntax.Node)
	if !ok {
		t.Fatalf("Value(inner) = %T, want *syntax.Node", parent.Value("inner"))
	}
	if got.Ref().String() != "main/inner" {
		t.Errorf("child Ref() = %s, want main/inner", got.Ref())
	}
}
