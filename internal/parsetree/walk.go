package parsetree

// WalkPre visits root and its descendants parent-first, using an explicit
// work stack so script depth never grows the call stack. Child order is
// the deterministic order from Children. Used when context flows downward.
func WalkPre(root Node, visit func(Node)) {
	stack := []Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(node)
		children := node.Children()
		// Push in reverse so the first child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i].Node)
		}
	}
}

// walkFrame tracks one node's progress through a post-order walk.
type walkFrame struct {
	node     Node
	children []ChildEntry
	next     int
}

// WalkPost visits root and its descendants children-first, using an
// explicit work stack. Each node's children are captured when the node is
// first reached, so a visitor that splices a replacement subtree into the
// tree does not disturb the sweep in progress. Used when results flow
// upward.
func WalkPost(root Node, visit func(Node)) {
	stack := []*walkFrame{{node: root, children: root.Children()}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		if frame.next < len(frame.children) {
			child := frame.children[frame.next].Node
			frame.next++
			stack = append(stack, &walkFrame{node: child, children: child.Children()})
			continue
		}
		visit(frame.node)
		stack = stack[:len(stack)-1]
	}
}
