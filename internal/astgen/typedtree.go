// Package astgen transforms the mutable parsed tree into the immutable
// syntax tree: bounded macro expansion, parent-driven type assignment,
// structural validation, root type synthesis, and final lowering.
package astgen

import (
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/registry"
)

// TypedTree is the parsed tree plus the registry it was typed against and
// the accumulated set of referenced type ids. The referenced set drives
// dead-type elimination before emission.
type TypedTree struct {
	Root     parsetree.Node
	Registry *registry.Registry

	referenced map[string]struct{}
}

// NewTypedTree wraps a parsed root for typing.
func NewTypedTree(root parsetree.Node, reg *registry.Registry) *TypedTree {
	return &TypedTree{Root: root, Registry: reg, referenced: map[string]struct{}{}}
}

// MarkReferenced records a type as reachable from the script.
func (t *TypedTree) MarkReferenced(typ nodetype.Type) {
	if typ == nil {
		return
	}
	t.referenced[typ.TypeID()] = struct{}{}
}

// Referenced returns the accumulated referenced-type-id set.
func (t *TypedTree) Referenced() map[string]struct{} { return t.referenced }
