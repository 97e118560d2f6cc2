// Package scene is a minimal in-memory transform hierarchy.
//
// Nodes live in a flat store and are addressed by generational handles: a handle
// to a despawned node never resolves again, even if its slot is reused.
// Parent links are handles, never pointers.
package scene

import (
	"errors"
	"fmt"

	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrInvalidHandle   = errors.New("invalid handle")
	ErrCycle           = errors.New("hierarchy cycle")
	ErrBrokenHierarchy = errors.New("broken hierarchy")
)

// Handle identifies a node of a Graph. The zero Handle never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("%dv%d", h.index, h.generation)
}

type node struct {
	generation uint32
	alive      bool

	local actor.Transform
	world actor.Transform

	parent    Handle
	hasParent bool
	children  []Handle
}

// Graph stores nodes with their local and cached world transforms
type Graph struct {
	// slot 0 is reserved so the zero Handle is always invalid
	nodes []node
	free  []uint32
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make([]node, 1, 64),
	}
}

// Spawn adds a root node. Its world transform equals local until the next Propagate.
func (g *Graph) Spawn(local actor.Transform) Handle {
	var index uint32
	if n := len(g.free); n > 0 {
		index = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		index = uint32(len(g.nodes))
		g.nodes = append(g.nodes, node{})
	}

	n := &g.nodes[index]
	n.generation++
	n.alive = true
	n.local = local
	n.world = local
	n.parent = Handle{}
	n.hasParent = false
	n.children = n.children[:0]

	return Handle{index: index, generation: n.generation}
}

// SpawnChild adds a node under parent. Its world transform is computed immediately.
func (g *Graph) SpawnChild(parent Handle, local actor.Transform) (Handle, error) {
	if !g.Valid(parent) {
		return Handle{}, fmt.Errorf("spawn child of %v: %w", parent, ErrInvalidHandle)
	}

	h := g.Spawn(local)
	if err := g.SetParent(h, parent); err != nil {
		g.Despawn(h)
		return Handle{}, err
	}
	if world, err := g.ComputeWorldTransform(h); err == nil {
		g.nodes[h.index].world = world
	}

	return h, nil
}

// Valid reports whether h refers to a live node
func (g *Graph) Valid(h Handle) bool {
	return h.index != 0 && int(h.index) < len(g.nodes) &&
		g.nodes[h.index].alive && g.nodes[h.index].generation == h.generation
}

func (g *Graph) get(h Handle) (*node, bool) {
	if !g.Valid(h) {
		return nil, false
	}
	return &g.nodes[h.index], true
}

// Len returns the number of live nodes
func (g *Graph) Len() int {
	return len(g.nodes) - 1 - len(g.free)
}

// Despawn removes h only. Its children keep a link to the removed node:
// their ancestry is broken until they are reparented.
func (g *Graph) Despawn(h Handle) {
	n, ok := g.get(h)
	if !ok {
		return
	}

	g.detach(h, n)
	n.alive = false
	n.children = n.children[:0]
	g.free = append(g.free, h.index)
}

// DespawnRecursive removes h and all its descendants
func (g *Graph) DespawnRecursive(h Handle) {
	n, ok := g.get(h)
	if !ok {
		return
	}

	children := append([]Handle(nil), n.children...)
	for _, child := range children {
		g.DespawnRecursive(child)
	}
	g.Despawn(h)
}

// SetParent attaches child under parent. Attaching a node under itself or one of its descendants fails with ErrCycle.
func (g *Graph) SetParent(child, parent Handle) error {
	c, ok := g.get(child)
	if !ok {
		return fmt.Errorf("set parent of %v: %w", child, ErrInvalidHandle)
	}
	if !g.Valid(parent) {
		return fmt.Errorf("set parent %v: %w", parent, ErrInvalidHandle)
	}

	for ancestor, has := parent, true; has; ancestor, has = g.Parent(ancestor) {
		if ancestor == child {
			return fmt.Errorf("set parent of %v to %v: %w", child, parent, ErrCycle)
		}
	}

	g.detach(child, c)
	c.parent = parent
	c.hasParent = true
	p := &g.nodes[parent.index]
	p.children = append(p.children, child)

	return nil
}

// RemoveParent makes child a root node
func (g *Graph) RemoveParent(child Handle) {
	if c, ok := g.get(child); ok {
		g.detach(child, c)
	}
}

func (g *Graph) detach(h Handle, n *node) {
	if !n.hasParent {
		return
	}

	if p, ok := g.get(n.parent); ok {
		for i, c := range p.children {
			if c == h {
				p.children = append(p.children[:i], p.children[i+1:]...)
				break
			}
		}
	}
	n.parent = Handle{}
	n.hasParent = false
}

// Children returns a copy of the direct children of h
func (g *Graph) Children(h Handle) []Handle {
	n, ok := g.get(h)
	if !ok {
		return nil
	}
	return append([]Handle(nil), n.children...)
}

// Parent returns the parent link of h, which may point to a despawned node
func (g *Graph) Parent(h Handle) (Handle, bool) {
	n, ok := g.get(h)
	if !ok || !n.hasParent {
		return Handle{}, false
	}
	return n.parent, true
}

func (g *Graph) Local(h Handle) (actor.Transform, bool) {
	n, ok := g.get(h)
	if !ok {
		return actor.Transform{}, false
	}
	return n.local, true
}

func (g *Graph) SetLocal(h Handle, local actor.Transform) error {
	n, ok := g.get(h)
	if !ok {
		return fmt.Errorf("set local of %v: %w", h, ErrInvalidHandle)
	}
	n.local = local
	return nil
}

func (g *Graph) LocalRotation(h Handle) (mgl64.Quat, bool) {
	n, ok := g.get(h)
	if !ok {
		return mgl64.Quat{}, false
	}
	return n.local.Rotation, true
}

func (g *Graph) SetLocalRotation(h Handle, rotation mgl64.Quat) {
	if n, ok := g.get(h); ok {
		n.local.Rotation = rotation
	}
}

// WorldTransform returns the cached world transform of h, as of the last Propagate or refresh
func (g *Graph) WorldTransform(h Handle) (actor.Transform, bool) {
	n, ok := g.get(h)
	if !ok {
		return actor.Transform{}, false
	}
	return n.world, true
}

func (g *Graph) SetWorldTransform(h Handle, world actor.Transform) {
	if n, ok := g.get(h); ok {
		n.world = world
	}
}

// ComputeWorldTransform composes the local transforms from the root down to h,
// without reading nor writing any cached world transform.
func (g *Graph) ComputeWorldTransform(h Handle) (actor.Transform, error) {
	n, ok := g.get(h)
	if !ok {
		return actor.Transform{}, fmt.Errorf("compute world transform of %v: %w", h, ErrInvalidHandle)
	}

	// collected leaf to root, composed root first like Propagate
	chain := []*node{n}
	current := h
	for n.hasParent {
		if len(chain) > len(g.nodes) {
			return actor.Transform{}, fmt.Errorf("compute world transform of %v: %w", h, ErrCycle)
		}

		parent, ok := g.get(n.parent)
		if !ok {
			return actor.Transform{}, fmt.Errorf("compute world transform of %v: parent %v of %v: %w",
				h, n.parent, current, ErrBrokenHierarchy)
		}

		chain = append(chain, parent)
		current = n.parent
		n = parent
	}

	world := chain[len(chain)-1].local
	for i := len(chain) - 2; i >= 0; i-- {
		world = world.Mul(chain[i].local)
	}

	return world, nil
}
