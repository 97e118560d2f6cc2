// Package ecs runs rotateto on a donburi world.
//
// Entities carry a local Transform and a GlobalTransform, an optional Parent link,
// and a RotateTo directive to be rotated. Tick runs the whole frame: propagation of
// the world transforms, registration of the rotators, then the rotation step.
package ecs

import (
	"github.com/akmonengine/rotateto"
	"github.com/akmonengine/rotateto/actor"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

// ParentData links an entity to its parent entity
type ParentData struct {
	Entity donburi.Entity
}

var (
	// Transform is the local transform, relative to the parent
	Transform = donburi.NewComponentType[actor.Transform]()
	// GlobalTransform is the world transform cache, written by Propagate and the rotation refresh
	GlobalTransform = donburi.NewComponentType[actor.Transform]()
	Parent          = donburi.NewComponentType[ParentData]()
	RotateTo        = donburi.NewComponentType[rotateto.RotateTo[donburi.Entity]]()
)

var (
	nodes    = donburi.NewQuery(filter.Contains(Transform, GlobalTransform))
	rotators = donburi.NewQuery(filter.Contains(RotateTo, Transform, GlobalTransform))
)

// Spawn creates an entity with a local and a world transform, both set to local
func Spawn(w donburi.World, local actor.Transform, components ...donburi.IComponentType) donburi.Entity {
	entity := w.Create(append([]donburi.IComponentType{Transform, GlobalTransform}, components...)...)
	entry := w.Entry(entity)

	*Transform.Get(entry) = local
	*GlobalTransform.Get(entry) = local

	return entity
}

// SetParent links child to parent. The link is not validated, a dangling parent breaks the ancestry.
func SetParent(w donburi.World, child, parent donburi.Entity) {
	entry := w.Entry(child)
	if !entry.HasComponent(Parent) {
		entry.AddComponent(Parent)
	}
	Parent.Get(entry).Entity = parent
}

// RemoveParent makes child a root entity
func RemoveParent(w donburi.World, child donburi.Entity) {
	entry := w.Entry(child)
	if entry.HasComponent(Parent) {
		entry.RemoveComponent(Parent)
	}
}

// SetRotateTo adds or replaces the directive of e
func SetRotateTo(w donburi.World, e donburi.Entity, directive rotateto.RotateTo[donburi.Entity]) {
	entry := w.Entry(e)
	if !entry.HasComponent(RotateTo) {
		entry.AddComponent(RotateTo)
	}
	*RotateTo.Get(entry) = directive
}

// RemoveRotateTo stops rotating e
func RemoveRotateTo(w donburi.World, e donburi.Entity) {
	entry := w.Entry(e)
	if entry.HasComponent(RotateTo) {
		entry.RemoveComponent(RotateTo)
	}
}
