// Package parsetree holds the mutable intermediate tree the parser hands
// to the pipeline: three node kinds (simple, list, parameter) with parent
// links, per-node problem lists, and write-once typing cells.
package parsetree

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
)

// NodeID identifies a node: the source path for diagnostics and the
// reference path used as the node's unique lookup key.
type NodeID struct {
	Source problem.Path
	Ref    problem.Path
}

// Node is one node in the parsed tree. Exactly three implementations
// exist: *SimpleNode, *ListNode, and *ParameterNode.
type Node interface {
	ID() NodeID
	// TypeID is the declared type id: a basic type id for simple nodes,
	// a registry id for parameter nodes, and "" for list nodes (lists
	// have no independent registry entry).
	TypeID() string
	Parent() *ParentRef
	// AssignedType returns the resolved type, or nil before assignment.
	AssignedType() nodetype.Type
	// SetAssignedType fills the write-once type cell. A second write is a
	// pipeline bug and panics.
	SetAssignedType(t nodetype.Type)
	AddProblem(problems ...*problem.Problem)
	Problems() []*problem.Problem
	// Valid reports whether no error-level problem is attached to this
	// node itself (child problems are not included).
	Valid() bool

	// Children returns the node's children in deterministic order:
	// numeric index for lists, sorted key for parameter nodes. Simple
	// nodes return nil.
	Children() []ChildEntry

	attachParent(parent Node, key string)
	clearParent()
}

// ChildEntry pairs a child node with the key it occupies in its parent.
type ChildEntry struct {
	Key  string
	Node Node
}

// ParentRef is a child's link to its parent: the parent node, the key the
// child occupies, and a lazily-cached descriptor of what the parent's type
// allows at that key.
type ParentRef struct {
	Node Node
	Key  string

	context    *nodetype.Parameter
	contextSet bool
}

// SetContext fills the write-once parameter-descriptor cache. A second
// write is a pipeline bug and panics.
func (r *ParentRef) SetContext(p *nodetype.Parameter) {
	if r.contextSet {
		panic(fmt.Sprintf("parsetree: parent context at key %q written twice", r.Key))
	}
	r.context = p
	r.contextSet = true
}

// Context returns the cached descriptor, or nil if not yet derived.
func (r *ParentRef) Context() *nodetype.Parameter { return r.context }

// base carries the fields shared by all three node kinds.
type base struct {
	id       NodeID
	parent   *ParentRef
	problems problem.Collector
	assigned nodetype.Type
}

func (b *base) ID() NodeID                            { return b.id }
func (b *base) Parent() *ParentRef                    { return b.parent }
func (b *base) AssignedType() nodetype.Type           { return b.assigned }
func (b *base) Problems() []*problem.Problem          { return b.problems.Problems() }
func (b *base) AddProblem(problems ...*problem.Problem) { b.problems.Add(problems...) }
func (b *base) Valid() bool                           { return b.problems.Valid() }

func (b *base) SetAssignedType(t nodetype.Type) {
	if b.assigned != nil {
		panic(fmt.Sprintf("parsetree: type assigned twice to node %s", b.id.Source))
	}
	b.assigned = t
}

func (b *base) attachParent(parent Node, key string) {
	if b.parent != nil {
		panic(fmt.Sprintf(
			"parsetree: node %s attached to parent %s at %q but already has parent %s",
			b.id.Source, parent.ID().Source, key, b.parent.Node.ID().Source,
		))
	}
	b.parent = &ParentRef{Node: parent, Key: key}
}

func (b *base) clearParent() { b.parent = nil }

// SimpleNode holds a constant basic-typed value.
type SimpleNode struct {
	base
	BasicID nodetype.BasicTypeID
	Value   any
}

// NewSimpleNode creates a simple node carrying an already-tagged value.
func NewSimpleNode(id NodeID, basicID nodetype.BasicTypeID, value any) *SimpleNode {
	return &SimpleNode{base: base{id: id}, BasicID: basicID, Value: value}
}

func (n *SimpleNode) TypeID() string        { return string(n.BasicID) }
func (n *SimpleNode) Children() []ChildEntry { return nil }

// ListNode holds an ordered, uniformly-typed collection of children.
type ListNode struct {
	base
	items []Node

	itemType    *nodetype.Parameter
	itemTypeSet bool
}

// NewListNode creates an empty list node.
func NewListNode(id NodeID) *ListNode {
	return &ListNode{base: base{id: id}}
}

func (n *ListNode) TypeID() string { return "" }

// Append adds a child at the next index. The child must not already have
// a parent; violating that is a parser bug and panics.
func (n *ListNode) Append(child Node) {
	key := strconv.Itoa(len(n.items))
	child.attachParent(n, key)
	n.items = append(n.items, child)
}

// Len returns the number of items.
func (n *ListNode) Len() int { return len(n.items) }

// Children returns the items in index order.
func (n *ListNode) Children() []ChildEntry {
	out := make([]ChildEntry, len(n.items))
	for i, item := range n.items {
		out[i] = ChildEntry{Key: strconv.Itoa(i), Node: item}
	}
	return out
}

// SetItemType fills the write-once effective item descriptor, derived from
// the parent's declared slot. A second write panics.
func (n *ListNode) SetItemType(p *nodetype.Parameter) {
	if n.itemTypeSet {
		panic(fmt.Sprintf("parsetree: item type written twice on list %s", n.id.Source))
	}
	n.itemType = p
	n.itemTypeSet = true
}

// ItemType returns the derived item descriptor, or nil if not yet set.
func (n *ListNode) ItemType() *nodetype.Parameter { return n.itemType }

// ParameterNode holds uniquely-keyed children under a declared type id.
type ParameterNode struct {
	base
	typeID   string
	children map[string]Node
}

// NewParameterNode creates an empty parameter node with the given type id.
// The root node uses an empty type id.
func NewParameterNode(id NodeID, typeID string) *ParameterNode {
	return &ParameterNode{base: base{id: id}, typeID: typeID, children: map[string]Node{}}
}

func (n *ParameterNode) TypeID() string { return n.typeID }

// Set adds a child under key. The key must be unused and the child
// parentless; violating either is a parser bug and panics.
func (n *ParameterNode) Set(key string, child Node) {
	if _, exists := n.children[key]; exists {
		panic(fmt.Sprintf("parsetree: key %q set twice on node %s", key, n.id.Source))
	}
	child.attachParent(n, key)
	n.children[key] = child
}

// Get returns the child at key, or nil.
func (n *ParameterNode) Get(key string) Node { return n.children[key] }

// Len returns the number of children.
func (n *ParameterNode) Len() int { return len(n.children) }

// Children returns the children in sorted key order so traversal is
// reproducible.
func (n *ParameterNode) Children() []ChildEntry {
	keys := make([]string, 0, len(n.children))
	for key := range n.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]ChildEntry, len(keys))
	for i, key := range keys {
		out[i] = ChildEntry{Key: key, Node: n.children[key]}
	}
	return out
}

// Replace swaps the child at key for a new subtree, clearing the replaced
// subtree's parent link. Only macro expansion performs this. The key must
// already be occupied and the replacement parentless; violating either is
// a pipeline bug and panics.
func (n *ParameterNode) Replace(key string, child Node) Node {
	old, exists := n.children[key]
	if !exists {
		panic(fmt.Sprintf("parsetree: replace at unassigned key %q on node %s", key, n.id.Source))
	}
	old.clearParent()
	child.attachParent(n, key)
	n.children[key] = child
	return old
}

// ReplaceChild swaps a child of any container node kind at the given key.
// List keys are decimal indexes.
func ReplaceChild(parent Node, key string, child Node) Node {
	switch p := parent.(type) {
	case *ParameterNode:
		return p.Replace(key, child)
	case *ListNode:
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(p.items) {
			panic(fmt.Sprintf("parsetree: replace at bad list index %q on node %s", key, p.id.Source))
		}
		old := p.items[idx]
		old.clearParent()
		child.attachParent(p, key)
		p.items[idx] = child
		return old
	default:
		panic(fmt.Sprintf("parsetree: non-container node %s cannot hold children", parent.ID().Source))
	}
}
