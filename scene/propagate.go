package scene

// Propagate recomputes the cached world transform of every node reachable from a root,
// parents before children. Nodes below a despawned ancestor keep their previous world transform.
func (g *Graph) Propagate() {
	stack := make([]Handle, 0, 16)

	for i := 1; i < len(g.nodes); i++ {
		root := &g.nodes[i]
		if !root.alive || root.hasParent {
			continue
		}

		root.world = root.local
		stack = append(stack[:0], Handle{index: uint32(i), generation: root.generation})

		for len(stack) > 0 {
			h := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := &g.nodes[h.index]

			for _, child := range parent.children {
				c, ok := g.get(child)
				if !ok {
					continue
				}
				c.world = parent.world.Mul(c.local)
				stack = append(stack, child)
			}
		}
	}
}
