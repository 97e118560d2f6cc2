package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// AxisForward is the local axis a Transform looks along.
	AxisForward = mgl64.Vec3{0, 0, -1}
	// AxisUp is the local up axis, also used as the global up.
	AxisUp    = mgl64.Vec3{0, 1, 0}
	AxisRight = mgl64.Vec3{1, 0, 0}
)

// Transform represents a position, rotation and scale in 3D space.
// The same type is used for local (relative to a parent) and world transforms.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// FromPosition creates a transform at position, with identity rotation and unit scale
func FromPosition(position mgl64.Vec3) Transform {
	t := NewTransform()
	t.Position = position
	return t
}

// FromPositionRotation creates a transform at position with the given rotation and unit scale
func FromPositionRotation(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	t := NewTransform()
	t.Position = position
	t.Rotation = rotation
	return t
}

// Forward returns the direction of the local forward axis (-Z) in the transform's parent space
func (t Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisForward)
}

// Up returns the direction of the local up axis (+Y)
func (t Transform) Up() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisUp)
}

// Right returns the direction of the local right axis (+X)
func (t Transform) Right() mgl64.Vec3 {
	return t.Rotation.Rotate(AxisRight)
}

// Mul composes t with child, child being expressed relative to t.
// For a parent world transform and a child local transform, the result is the child world transform.
func (t Transform) Mul(child Transform) Transform {
	scaled := mulElem(t.Scale, child.Position)

	return Transform{
		Position: t.Position.Add(t.Rotation.Rotate(scaled)),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
		Scale:    mulElem(t.Scale, child.Scale),
	}
}

// IsFinite reports whether every component of the transform is a finite number
func (t Transform) IsFinite() bool {
	for _, v := range [...]float64{
		t.Position[0], t.Position[1], t.Position[2],
		t.Scale[0], t.Scale[1], t.Scale[2],
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return QuatIsFinite(t.Rotation)
}

func QuatIsFinite(q mgl64.Quat) bool {
	for _, v := range [...]float64{q.W, q.V[0], q.V[1], q.V[2]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// QuatAbsDiffEq reports whether every component of a and b differs by at most epsilon.
// q and -q describe the same rotation but are NOT considered equal here.
func QuatAbsDiffEq(a, b mgl64.Quat, epsilon float64) bool {
	return math.Abs(a.W-b.W) <= epsilon &&
		math.Abs(a.V[0]-b.V[0]) <= epsilon &&
		math.Abs(a.V[1]-b.V[1]) <= epsilon &&
		math.Abs(a.V[2]-b.V[2]) <= epsilon
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}
