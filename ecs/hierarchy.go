package ecs

import (
	"errors"
	"fmt"

	"github.com/akmonengine/rotateto"
	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

var ErrBrokenHierarchy = errors.New("broken hierarchy")

const maxDepth = 1 << 16

// Hierarchy exposes the transforms of a donburi world to a rotateto.System.
// donburi entries are not safe for concurrent reads: keep System.Workers at 1.
type Hierarchy struct {
	World donburi.World
}

var _ rotateto.Hierarchy[donburi.Entity] = Hierarchy{}

func (h Hierarchy) entry(e donburi.Entity, component donburi.IComponentType) (*donburi.Entry, bool) {
	if !h.World.Valid(e) {
		return nil, false
	}

	entry := h.World.Entry(e)
	if !entry.HasComponent(component) {
		return nil, false
	}
	return entry, true
}

func (h Hierarchy) WorldTransform(e donburi.Entity) (actor.Transform, bool) {
	entry, ok := h.entry(e, GlobalTransform)
	if !ok {
		return actor.Transform{}, false
	}
	return *GlobalTransform.Get(entry), true
}

func (h Hierarchy) SetWorldTransform(e donburi.Entity, world actor.Transform) {
	if entry, ok := h.entry(e, GlobalTransform); ok {
		*GlobalTransform.Get(entry) = world
	}
}

func (h Hierarchy) Parent(e donburi.Entity) (donburi.Entity, bool) {
	entry, ok := h.entry(e, Parent)
	if !ok {
		return donburi.Null, false
	}
	return Parent.Get(entry).Entity, true
}

func (h Hierarchy) LocalRotation(e donburi.Entity) (mgl64.Quat, bool) {
	entry, ok := h.entry(e, Transform)
	if !ok {
		return mgl64.Quat{}, false
	}
	return Transform.Get(entry).Rotation, true
}

func (h Hierarchy) SetLocalRotation(e donburi.Entity, rotation mgl64.Quat) {
	if entry, ok := h.entry(e, Transform); ok {
		Transform.Get(entry).Rotation = rotation
	}
}

// ComputeWorldTransform composes the local Transform of e with the ones of its ancestors.
// Every ancestor must be alive and carry a Transform.
func (h Hierarchy) ComputeWorldTransform(e donburi.Entity) (actor.Transform, error) {
	entry, ok := h.entry(e, Transform)
	if !ok {
		return actor.Transform{}, fmt.Errorf("compute world transform of %v: %w", e, ErrBrokenHierarchy)
	}

	// composed root first, like Propagate
	chain := []actor.Transform{*Transform.Get(entry)}
	current := e
	for {
		parent, ok := h.Parent(current)
		if !ok {
			break
		}
		if len(chain) > maxDepth {
			return actor.Transform{}, fmt.Errorf("compute world transform of %v: hierarchy deeper than %d: %w", e, maxDepth, ErrBrokenHierarchy)
		}

		parentEntry, ok := h.entry(parent, Transform)
		if !ok {
			return actor.Transform{}, fmt.Errorf("compute world transform of %v: parent %v of %v: %w", e, parent, current, ErrBrokenHierarchy)
		}

		chain = append(chain, *Transform.Get(parentEntry))
		current = parent
	}

	world := chain[len(chain)-1]
	for i := len(chain) - 2; i >= 0; i-- {
		world = world.Mul(chain[i])
	}
	return world, nil
}

// Propagate recomputes the GlobalTransform of every entity.
// Entities with a broken ancestry keep their previous GlobalTransform.
func Propagate(w donburi.World) {
	h := Hierarchy{World: w}

	nodes.Each(w, func(entry *donburi.Entry) {
		if world, err := h.ComputeWorldTransform(entry.Entity()); err == nil {
			*GlobalTransform.Get(entry) = world
		}
	})
}

// Sync registers in s every entity carrying a RotateTo, a Transform and a GlobalTransform,
// and unregisters the ones that do not anymore.
func Sync(w donburi.World, s *rotateto.System[donburi.Entity]) {
	seen := make(map[donburi.Entity]struct{}, s.Len())

	rotators.Each(w, func(entry *donburi.Entry) {
		entity := entry.Entity()
		seen[entity] = struct{}{}
		s.Add(entity, *RotateTo.Get(entry))
	})

	for _, entity := range s.Handles() {
		if _, ok := seen[entity]; !ok {
			s.Remove(entity)
		}
	}
}

// NewSystem creates a rotateto.System reading and writing w.
// Its Workers must stay at 1: donburi entries are not safe for concurrent reads. Tick enforces it.
func NewSystem(w donburi.World) *rotateto.System[donburi.Entity] {
	return rotateto.NewSystem[donburi.Entity](Hierarchy{World: w})
}

// Tick runs a frame on w: propagation, rotator registration, then s.Step.
// s always computes on a single goroutine.
func Tick(w donburi.World, s *rotateto.System[donburi.Entity]) error {
	s.Workers = 1

	Propagate(w)
	Sync(w, s)

	return s.Step()
}
