// Package rotateto keeps objects of a transform hierarchy rotated towards a target object.
//
// Each tick, after the host has propagated world transforms, System.Step:
//   - computes for every registered rotator the local rotation pointing its forward axis (-Z)
//     at the world position of its target, according to its up policy
//   - writes it when it differs from the current local rotation
//   - recomputes the world transforms of the rotators it changed, parents first
//   - flushes the buffered events to the listeners
//
// The hierarchy itself is provided by the host through the Hierarchy interface.
// Package scene and package ecs provide two implementations.
// If you only need the math, see orient.LocalRotationToTarget.
package rotateto

import (
	"github.com/akmonengine/rotateto/actor"
	"github.com/akmonengine/rotateto/orient"
	"github.com/go-gl/mathgl/mgl64"
)

// RotationEpsilon is the component-wise tolerance under which a new rotation is not written
const RotationEpsilon = 1e-6

// RotateTo makes the forward axis of its owner point towards Target
type RotateTo[H comparable] struct {
	// Target must have a world transform, otherwise the directive is inert for the tick
	Target H
	// The rotated object up axis will try to match this
	Up orient.UpDirection
	// FlipVertical rotates the result 180° around the up direction
	FlipVertical bool
}

// Hierarchy is the transform hierarchy a System reads and writes.
// Read methods may be called from several goroutines at once when System.Workers > 1,
// but never concurrently with a Set method.
type Hierarchy[H comparable] interface {
	// WorldTransform returns the cached world transform of h
	WorldTransform(h H) (actor.Transform, bool)
	// Parent returns the parent link of h, if any
	Parent(h H) (H, bool)
	// ComputeWorldTransform composes h local transform with its ancestors'
	ComputeWorldTransform(h H) (actor.Transform, error)
	SetWorldTransform(h H, world actor.Transform)
	LocalRotation(h H) (mgl64.Quat, bool)
	SetLocalRotation(h H, rotation mgl64.Quat)
}
