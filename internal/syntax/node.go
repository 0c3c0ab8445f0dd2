// Package syntax defines the immutable lowered tree the code generator
// consumes. Every node has a resolved concrete type (never a macro) and a
// key-to-value map in which declared fields are always materialized.
package syntax

import (
	"sort"
	"strconv"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
)

// Value is a node's entry under one key: either a nested *Node or a
// Literal basic value.
type Value interface {
	isValue()
}

// Literal wraps a simple node's constant value inlined into its parent.
type Literal struct {
	BasicID nodetype.BasicTypeID
	Val     any
}

func (Literal) isValue() {}

func (*Node) isValue() {}

// Node is one finalized syntax node.
type Node struct {
	source problem.Path
	ref    problem.Path
	typ    nodetype.Type
	values map[string]Value
}

// New builds an immutable node, copying the value map.
func New(source, ref problem.Path, typ nodetype.Type, values map[string]Value) *Node {
	copied := make(map[string]Value, len(values))
	for key, val := range values {
		copied[key] = val
	}
	return &Node{source: source, ref: ref, typ: typ, values: copied}
}

// Source is the node's source path, for diagnostics.
func (n *Node) Source() problem.Path { return n.source }

// Ref is the node's unique reference path, used to key generated code.
func (n *Node) Ref() problem.Path { return n.ref }

// Type is the node's resolved concrete type.
func (n *Node) Type() nodetype.Type { return n.typ }

// Value returns the entry under key, or nil.
func (n *Node) Value(key string) Value { return n.values[key] }

// Keys returns the node's keys in sorted order.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.values))
	for key := range n.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (n *Node) Len() int { return len(n.values) }

// OrderedItems returns the values of a list-shaped node in index order.
// List children are stored under decimal-index keys; iteration stops at
// the first missing index.
func (n *Node) OrderedItems() []Value {
	var out []Value
	for i := 0; ; i++ {
		val, ok := n.values[strconv.Itoa(i)]
		if !ok {
			return out
		}
		out = append(out, val)
	}
}
