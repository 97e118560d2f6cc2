// Package orient computes look-at rotations for objects living in a transform hierarchy.
//
// The rotation of a rotator is built in world space so that its forward axis (-Z)
// points at the target position, with the up axis as close as possible to a chosen
// up reference. It is then optionally flipped 180° around that up reference, and finally
// expressed relative to the parent world rotation so it can be stored as a local rotation.
//
// All functions are pure and deterministic.
package orient

import (
	"math"

	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DegenerateEpsilon is the length below which a direction is considered zero.
// Below it, a look direction or an up reference cannot define a basis.
const DegenerateEpsilon = 1e-9

// LookRotation returns the rotation whose forward axis (-Z) points along direction,
// with its up axis (+Y) in the plane of direction and up.
//
// If up is zero or collinear with direction, an arbitrary axis orthogonal to direction
// is used instead, so the result is always a valid rotation.
// ok is false when direction is too short to be normalized; the identity is returned.
func LookRotation(direction, up mgl64.Vec3) (rotation mgl64.Quat, ok bool) {
	length := direction.Len()
	if length < DegenerateEpsilon || math.IsNaN(length) {
		return mgl64.QuatIdent(), false
	}

	back := direction.Mul(-1.0 / length)

	// Gram-Schmidt: right is orthogonal to both, the new up is the part of up orthogonal to back
	right := up.Cross(back)
	if rightLen := right.Len(); rightLen < DegenerateEpsilon || math.IsNaN(rightLen) {
		right = anyOrthonormal(back)
	} else {
		right = right.Mul(1.0 / rightLen)
	}
	orthoUp := back.Cross(right)

	basis := mgl64.Mat3FromCols(right, orthoUp, back)

	return mgl64.Mat4ToQuat(basis.Mat4()).Normalize(), true
}

// FlipAroundUp rotates rotation by 180° around up, in world space.
// Forward and right are mirrored, up is preserved.
func FlipAroundUp(rotation mgl64.Quat, up mgl64.Vec3) mgl64.Quat {
	length := up.Len()
	if length < DegenerateEpsilon {
		up = actor.AxisUp
	} else {
		up = up.Mul(1.0 / length)
	}

	return mgl64.QuatRotate(math.Pi, up).Mul(rotation).Normalize()
}

// LocalRotationToTarget computes the local rotation of rotator so its forward axis points at target,
// with the given world up reference. parent is the parent world transform, or nil for a root object.
// Scales are ignored.
//
// When rotator and target share the same position, the look direction is undefined:
// the current world rotation of rotator is kept (and not flipped), so the result is its
// current local rotation.
func LocalRotationToTarget(rotator, target actor.Transform, parent *actor.Transform, up mgl64.Vec3, flipVertical bool) mgl64.Quat {
	rotation, ok := LookRotation(target.Position.Sub(rotator.Position), up)
	if !ok {
		rotation = rotator.Rotation.Normalize()
	} else if flipVertical {
		rotation = FlipAroundUp(rotation, up)
	}

	if parent != nil {
		rotation = parent.Rotation.Inverse().Mul(rotation)
	}

	return rotation.Normalize()
}

// anyOrthonormal returns a unit vector orthogonal to the unit vector v.
// Duff et al., "Building an Orthonormal Basis, Revisited" (2017)
func anyOrthonormal(v mgl64.Vec3) mgl64.Vec3 {
	sign := math.Copysign(1, v.Z())
	a := -1.0 / (sign + v.Z())
	b := v.X() * v.Y() * a

	return mgl64.Vec3{1 + sign*v.X()*v.X()*a, sign * b, -sign * v.X()}
}
