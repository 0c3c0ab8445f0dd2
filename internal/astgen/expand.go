package astgen

import (
	"fmt"

	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/registry"
)

// DefaultMaxRounds bounds macro expansion for the standard pipeline.
const DefaultMaxRounds = 25

// Expand rewrites macro nodes to their translated subtrees until the tree
// reaches a fixed point, sweeping post-order at most maxRounds times.
// Macros may expand into further macro uses, so no static ordering exists;
// iterate-to-quiescence is the only strategy, and the cap keeps a
// self-producing macro from looping forever.
//
// Returns the number of sweeps that changed the tree. If every sweep up
// to the cap made a change the expansion failed to settle and the error
// is fatal for the whole pipeline; per-node translation failures are
// attached to the failing node as problems instead.
func Expand(root parsetree.Node, reg *registry.Registry, maxRounds int) (int, error) {
	rounds := 0
	for sweep := 0; sweep < maxRounds; sweep++ {
		changed := false
		parsetree.WalkPost(root, func(node parsetree.Node) {
			if !node.Valid() {
				return
			}
			handler := reg.MetaHandler(node.TypeID())
			if handler == nil {
				return
			}
			parent := node.Parent()
			if parent == nil {
				// No parent to splice the translation into.
				node.AddProblem(problem.Validation(
					CodeMetaAtRoot, node.ID().Source,
					"root node cannot be of macro type %q", node.TypeID(),
				))
				return
			}
			replacement, problems := handler.Translate(node)
			if problem.HasErrors(problems) {
				// Failed this round; no retry until the next sweep.
				node.AddProblem(problems...)
				return
			}
			if replacement == nil {
				panic(fmt.Sprintf("astgen: macro %q returned no subtree and no error", node.TypeID()))
			}
			node.AddProblem(problems...)
			parsetree.ReplaceChild(parent.Node, parent.Key, replacement)
			changed = true
		})
		if !changed {
			return rounds, nil
		}
		rounds++
	}
	return rounds, fmt.Errorf(
		"macro expansion did not reach a fixed point within %d rounds", maxRounds,
	)
}
