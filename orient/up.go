package orient

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidUp is returned when a fixed up direction is zero, NaN or infinite.
var ErrInvalidUp = errors.New("invalid up direction")

// UpKind selects where the up reference of a look-at rotation comes from
type UpKind uint8

const (
	// UpTarget follows the world up axis of the target
	UpTarget UpKind = iota
	// UpParent follows the world up axis of the rotator's parent, or the global up without parent
	UpParent
	// UpFixed uses a constant direction
	UpFixed
)

func (k UpKind) String() string {
	switch k {
	case UpTarget:
		return "target"
	case UpParent:
		return "parent"
	case UpFixed:
		return "fixed"
	default:
		return fmt.Sprintf("UpKind(%d)", uint8(k))
	}
}

// UpDirection is the up policy of a rotator. The zero value follows the target.
// A fixed direction can only be built through FixedUp, which guarantees it is a unit vector.
type UpDirection struct {
	kind UpKind
	dir  mgl64.Vec3
}

// TargetUp synchronizes the rotator up with the up of its target.
// Useful when rotating towards a camera and keeping its notion of up.
func TargetUp() UpDirection {
	return UpDirection{kind: UpTarget}
}

// ParentUp keeps the rotator up aligned with the up of its parent.
func ParentUp() UpDirection {
	return UpDirection{kind: UpParent}
}

// FixedUp keeps a constant up direction. dir is normalized.
func FixedUp(dir mgl64.Vec3) (UpDirection, error) {
	for _, c := range dir {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return UpDirection{}, fmt.Errorf("%w: %v is not finite", ErrInvalidUp, dir)
		}
	}

	length := dir.Len()
	if length < DegenerateEpsilon {
		return UpDirection{}, fmt.Errorf("%w: %v has zero length", ErrInvalidUp, dir)
	}

	return UpDirection{kind: UpFixed, dir: dir.Mul(1.0 / length)}, nil
}

// MustFixedUp is like FixedUp but panics on an invalid direction.
func MustFixedUp(dir mgl64.Vec3) UpDirection {
	up, err := FixedUp(dir)
	if err != nil {
		panic(err)
	}

	return up
}

func (u UpDirection) Kind() UpKind {
	return u.kind
}

// Dir returns the fixed direction, and false for the other kinds
func (u UpDirection) Dir() (mgl64.Vec3, bool) {
	return u.dir, u.kind == UpFixed
}

func (u UpDirection) String() string {
	if u.kind == UpFixed {
		return fmt.Sprintf("fixed%v", u.dir)
	}
	return u.kind.String()
}

// ResolveUp returns the concrete world up vector for policy.
// parent is nil when the rotator has no parent.
func ResolveUp(policy UpDirection, target actor.Transform, parent *actor.Transform) mgl64.Vec3 {
	switch policy.kind {
	case UpFixed:
		return policy.dir
	case UpParent:
		if parent != nil {
			return parent.Up()
		}
		// no parent, fallback to the global up
		return actor.AxisUp
	default:
		return target.Up()
	}
}
