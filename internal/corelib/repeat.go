package corelib

import (
	"fmt"
	"strconv"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
)

// repeatHandler rewrites a repeat macro into a run command whose list
// holds the repeated subtree count times.
type repeatHandler struct{}

func (h *repeatHandler) Meta() *nodetype.MetaType {
	return &nodetype.MetaType{
		ID:   RepeatMetaID,
		Name: "repeat",
		Doc:  "Runs a command a fixed number of times.",
		Parameters: []*nodetype.Parameter{
			{Key: "count", Title: "number of repetitions", Type: nodetype.IntegerType, Required: true},
			{Key: "of", Title: "command to repeat", Required: true, AnyConstruct: true},
		},
	}
}

func (h *repeatHandler) Translate(node parsetree.Node) (parsetree.Node, []*problem.Problem) {
	pn, ok := node.(*parsetree.ParameterNode)
	if !ok {
		return nil, []*problem.Problem{problem.Validation(
			CodeRepeatShape, node.ID().Source, "repeat must be given keyed parameters",
		)}
	}

	count, probs := repeatCount(pn)
	of := pn.Get("of")
	if of == nil {
		probs = append(probs, problem.Validation(
			CodeRepeatShape, pn.ID().Source, "repeat needs an %q command", "of",
		))
	}
	if len(probs) > 0 {
		return nil, probs
	}

	id := pn.ID()
	replacement := parsetree.NewParameterNode(id, RunTypeID)
	list := parsetree.NewListNode(parsetree.NodeID{
		Source: id.Source.Child("run"),
		Ref:    id.Ref.Child("run"),
	})
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		list.Append(clone(of, id.Source.Child("run").Child(idx), id.Ref.Child("run").Child(idx)))
	}
	replacement.Set("run", list)
	return replacement, nil
}

func repeatCount(pn *parsetree.ParameterNode) (int, []*problem.Problem) {
	bad := func(format string, args ...any) (int, []*problem.Problem) {
		return 0, []*problem.Problem{problem.Validation(CodeRepeatCount, pn.ID().Source, format, args...)}
	}
	child, ok := pn.Get("count").(*parsetree.SimpleNode)
	if !ok {
		return bad("repeat needs an integer %q", "count")
	}
	var count int
	switch v := child.Value.(type) {
	case int:
		count = v
	case int64:
		count = int(v)
	default:
		return bad("repeat %q must be an integer, got %T", "count", child.Value)
	}
	if count < 1 {
		return bad("repeat %q must be at least 1, got %d", "count", count)
	}
	return count, nil
}

// cloneWork is one pending copy: a source subtree, its fresh paths, and
// where to attach the copy.
type cloneWork struct {
	src    parsetree.Node
	source problem.Path
	ref    problem.Path
	attach func(parsetree.Node)
}

// clone deep-copies a subtree under fresh source and reference paths, so
// each repetition keys its own generated code. Iterative with an explicit
// work stack; children are pushed in reverse so list items are appended
// in their original order.
func clone(node parsetree.Node, source, ref problem.Path) parsetree.Node {
	var root parsetree.Node
	stack := []cloneWork{{src: node, source: source, ref: ref, attach: func(n parsetree.Node) { root = n }}}
	for len(stack) > 0 {
		w := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		id := parsetree.NodeID{Source: w.source, Ref: w.ref}

		var out parsetree.Node
		var attachChild func(key string, child parsetree.Node)
		switch n := w.src.(type) {
		case *parsetree.SimpleNode:
			w.attach(parsetree.NewSimpleNode(id, n.BasicID, n.Value))
			continue
		case *parsetree.ListNode:
			list := parsetree.NewListNode(id)
			out = list
			attachChild = func(_ string, child parsetree.Node) { list.Append(child) }
		case *parsetree.ParameterNode:
			param := parsetree.NewParameterNode(id, n.TypeID())
			out = param
			attachChild = param.Set
		default:
			panic(fmt.Sprintf("corelib: unknown node kind %T", w.src))
		}
		w.attach(out)

		children := w.src.Children()
		for i := len(children) - 1; i >= 0; i-- {
			child := children[i]
			key := child.Key
			stack = append(stack, cloneWork{
				src:    child.Node,
				source: w.source.Child(key),
				ref:    w.ref.Child(key),
				attach: func(c parsetree.Node) { attachChild(key, c) },
			})
		}
	}
	return root
}

var _ addin.MetaHandler = (*repeatHandler)(nil)
