package orient

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// UpDirection Construction Tests
// =============================================================================

func TestUpDirection_ZeroValueIsTarget(t *testing.T) {
	var up UpDirection

	if up.Kind() != UpTarget {
		t.Errorf("zero value Kind() = %v, want %v", up.Kind(), UpTarget)
	}
	if _, ok := up.Dir(); ok {
		t.Error("zero value Dir() ok = true, want false")
	}
}

func TestFixedUp(t *testing.T) {
	tests := []struct {
		name    string
		dir     mgl64.Vec3
		want    mgl64.Vec3
		wantErr bool
	}{
		{"unit", mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}, false},
		{"normalized", mgl64.Vec3{0, 0, 4}, mgl64.Vec3{0, 0, 1}, false},
		{"diagonal", mgl64.Vec3{1, 1, 0}, mgl64.Vec3{1 / math.Sqrt2, 1 / math.Sqrt2, 0}, false},
		{"zero", mgl64.Vec3{}, mgl64.Vec3{}, true},
		{"tiny", mgl64.Vec3{1e-12, 0, 0}, mgl64.Vec3{}, true},
		{"nan", mgl64.Vec3{math.NaN(), 1, 0}, mgl64.Vec3{}, true},
		{"inf", mgl64.Vec3{0, math.Inf(1), 0}, mgl64.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, err := FixedUp(tt.dir)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidUp) {
					t.Fatalf("FixedUp(%v) error = %v, want ErrInvalidUp", tt.dir, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FixedUp(%v) unexpected error: %v", tt.dir, err)
			}

			dir, ok := up.Dir()
			if !ok || up.Kind() != UpFixed {
				t.Fatalf("FixedUp(%v) kind = %v, want fixed", tt.dir, up.Kind())
			}
			if !vec3AlmostEqual(dir, tt.want, 1e-12) {
				t.Errorf("Dir() = %v, want %v", dir, tt.want)
			}
		})
	}
}

func TestMustFixedUp_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFixedUp with a zero vector should panic")
		}
	}()

	MustFixedUp(mgl64.Vec3{})
}

func TestUpDirection_String(t *testing.T) {
	tests := []struct {
		up   UpDirection
		want string
	}{
		{TargetUp(), "target"},
		{ParentUp(), "parent"},
		{MustFixedUp(mgl64.Vec3{0, 2, 0}), "fixed[0 1 0]"},
	}

	for _, tt := range tests {
		if got := tt.up.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// =============================================================================
// ResolveUp Tests
// =============================================================================

func TestResolveUp(t *testing.T) {
	target := actor.FromPositionRotation(mgl64.Vec3{5, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1}))
	parent := actor.FromPositionRotation(mgl64.Vec3{}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}))

	tests := []struct {
		name   string
		policy UpDirection
		parent *actor.Transform
		want   mgl64.Vec3
	}{
		{"target", TargetUp(), &parent, mgl64.Vec3{-1, 0, 0}},
		{"parent", ParentUp(), &parent, mgl64.Vec3{0, 0, 1}},
		{"parent without parent", ParentUp(), nil, mgl64.Vec3{0, 1, 0}},
		{"fixed", MustFixedUp(mgl64.Vec3{0, 0, -3}), &parent, mgl64.Vec3{0, 0, -1}},
		{"fixed without parent", MustFixedUp(mgl64.Vec3{1, 0, 0}), nil, mgl64.Vec3{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveUp(tt.policy, target, tt.parent)
			if !vec3AlmostEqual(got, tt.want, 1e-9) {
				t.Errorf("ResolveUp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveUp_ParentWithoutParentMatchesFixedY(t *testing.T) {
	rotator := actor.FromPosition(mgl64.Vec3{1, 2, 3})
	target := actor.FromPositionRotation(mgl64.Vec3{-4, 0, 6}, mgl64.QuatRotate(1.2, mgl64.Vec3{1, 1, 0}.Normalize()))

	for _, flip := range []bool{false, true} {
		parentUp := ResolveUp(ParentUp(), target, nil)
		fixedUp := ResolveUp(MustFixedUp(mgl64.Vec3{0, 1, 0}), target, nil)

		a := LocalRotationToTarget(rotator, target, nil, parentUp, flip)
		b := LocalRotationToTarget(rotator, target, nil, fixedUp, flip)

		if a != b {
			t.Errorf("flip=%v: ParentUp without parent = %v, FixedUp(0,1,0) = %v", flip, a, b)
		}
	}
}
