// Package registry holds the concrete-type and macro-type handlers for a
// run, keyed by id. A registry is built once from an ordered add-in list
// and then threaded by reference through every pass; there is no ambient
// global.
package registry

import (
	"fmt"
	"sort"

	"github.com/nativeshell/nshell/internal/addin"
)

// Registry maps type ids to handlers. Type and macro ids share one
// namespace so a script type id is never ambiguous between the two
// handler classes.
type Registry struct {
	types map[string]addin.TypeHandler
	metas map[string]addin.MetaHandler
	// owner records which add-in registered each id, for duplicate errors.
	owner map[string]string
}

// New builds a registry from an ordered add-in list. A duplicate id across
// any handler class is a build error naming both offending add-ins.
func New(addIns []*addin.AddIn) (*Registry, error) {
	r := &Registry{
		types: map[string]addin.TypeHandler{},
		metas: map[string]addin.MetaHandler{},
		owner: map[string]string{},
	}
	for _, a := range addIns {
		for _, h := range a.Types {
			id := h.Type().TypeID()
			if err := r.claim(id, a.Name); err != nil {
				return nil, err
			}
			r.types[id] = h
		}
		for _, h := range a.Metas {
			id := h.Meta().MetaID()
			if err := r.claim(id, a.Name); err != nil {
				return nil, err
			}
			r.metas[id] = h
		}
	}
	return r, nil
}

func (r *Registry) claim(id, addInName string) error {
	if prev, taken := r.owner[id]; taken {
		return fmt.Errorf("type id %q registered by add-in %q is already registered by add-in %q", id, addInName, prev)
	}
	r.owner[id] = addInName
	return nil
}

// TypeHandler returns the concrete-type handler for id, or nil.
func (r *Registry) TypeHandler(id string) addin.TypeHandler { return r.types[id] }

// MetaHandler returns the macro handler for id, or nil.
func (r *Registry) MetaHandler(id string) addin.MetaHandler { return r.metas[id] }

// AddDynamic registers a handler synthesized during the run (the root
// type). Colliding with an already-registered id is a pipeline bug, not a
// user error, and panics.
func (r *Registry) AddDynamic(h addin.TypeHandler) {
	id := h.Type().TypeID()
	if _, taken := r.owner[id]; taken {
		panic(fmt.Sprintf("registry: dynamic type id %q collides with a registered id", id))
	}
	r.owner[id] = "-dynamic"
	r.types[id] = h
}

// Prune returns a registry narrowed to the referenced type-handler ids.
// Macro handlers never survive pruning; after expansion they are dead.
func (r *Registry) Prune(referenced map[string]struct{}) *Registry {
	out := &Registry{
		types: map[string]addin.TypeHandler{},
		metas: map[string]addin.MetaHandler{},
		owner: map[string]string{},
	}
	for id, h := range r.types {
		if _, ok := referenced[id]; ok {
			out.types[id] = h
			out.owner[id] = r.owner[id]
		}
	}
	return out
}

// TypeIDs returns the registered concrete-type ids in sorted order.
func (r *Registry) TypeIDs() []string {
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TypeHandlers returns the concrete-type handlers in sorted id order, so
// per-program shared code is emitted deterministically.
func (r *Registry) TypeHandlers() []addin.TypeHandler {
	ids := r.TypeIDs()
	out := make([]addin.TypeHandler, len(ids))
	for i, id := range ids {
		out[i] = r.types[id]
	}
	return out
}
