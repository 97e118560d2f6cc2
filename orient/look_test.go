package orient

import (
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/rotateto/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// LookRotation Tests
// =============================================================================

func TestLookRotation_Axes(t *testing.T) {
	tests := []struct {
		name      string
		direction mgl64.Vec3
		up        mgl64.Vec3
		wantUp    mgl64.Vec3
	}{
		{"forward -Z", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{"forward +Z", mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{"forward +X", mgl64.Vec3{5, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 1, 0}},
		{"tilted up reference", mgl64.Vec3{0, 0, -1}, mgl64.Vec3{1, 1, 0}.Normalize(), mgl64.Vec3{1, 1, 0}.Normalize()},
		{"diagonal look", mgl64.Vec3{1, 1, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{-1, 2, 1}.Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := LookRotation(tt.direction, tt.up)
			if !ok {
				t.Fatal("LookRotation() ok = false, want true")
			}

			tr := actor.FromPositionRotation(mgl64.Vec3{}, q)
			if !vec3AlmostEqual(tr.Forward(), tt.direction.Normalize(), 1e-9) {
				t.Errorf("Forward() = %v, want %v", tr.Forward(), tt.direction.Normalize())
			}
			if !vec3AlmostEqual(tr.Up(), tt.wantUp, 1e-9) {
				t.Errorf("Up() = %v, want %v", tr.Up(), tt.wantUp)
			}
			if !almostEqual(q.Len(), 1, 1e-12) {
				t.Errorf("rotation length = %v, want 1", q.Len())
			}
		})
	}
}

func TestLookRotation_ZeroDirection(t *testing.T) {
	q, ok := LookRotation(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})

	if ok {
		t.Error("LookRotation() ok = true for a zero direction")
	}
	if !quatAlmostEqual(q, mgl64.QuatIdent(), 1e-12) {
		t.Errorf("LookRotation() = %v, want identity", q)
	}
}

func TestLookRotation_CollinearUp(t *testing.T) {
	directions := []mgl64.Vec3{
		{0, 1, 0},
		{0, -1, 0},
		{0, 0, 1},
		{0, 0, -1},
		{1, 2, 3},
	}

	for _, dir := range directions {
		for _, up := range []mgl64.Vec3{dir, dir.Mul(-2), {}} {
			q, ok := LookRotation(dir, up)
			if !ok {
				t.Fatalf("LookRotation(%v, %v) ok = false", dir, up)
			}
			if !actor.QuatIsFinite(q) {
				t.Fatalf("LookRotation(%v, %v) = %v, not finite", dir, up, q)
			}

			forward := q.Rotate(actor.AxisForward)
			if !vec3AlmostEqual(forward, dir.Normalize(), 1e-9) {
				t.Errorf("LookRotation(%v, %v) forward = %v, want %v", dir, up, forward, dir.Normalize())
			}
		}
	}
}

func TestLookRotation_Deterministic(t *testing.T) {
	dir := mgl64.Vec3{0.3, -2, 7}
	up := mgl64.Vec3{0.1, 1, 0}

	first, _ := LookRotation(dir, up)
	for i := 0; i < 10; i++ {
		q, _ := LookRotation(dir, up)
		if q != first {
			t.Fatalf("LookRotation() call %d = %v, first call = %v", i, q, first)
		}
	}
}

func TestAnyOrthonormal(t *testing.T) {
	vectors := []mgl64.Vec3{
		{0, 0, 1},
		{0, 0, -1},
		{1, 0, 0},
		{0, 1, 0},
		mgl64.Vec3{1, -2, 0.5}.Normalize(),
		mgl64.Vec3{-0.2, 0.1, -0.9}.Normalize(),
	}

	for _, v := range vectors {
		o := anyOrthonormal(v)
		if !almostEqual(o.Len(), 1, 1e-9) {
			t.Errorf("anyOrthonormal(%v) length = %v, want 1", v, o.Len())
		}
		if !almostEqual(o.Dot(v), 0, 1e-9) {
			t.Errorf("anyOrthonormal(%v) dot = %v, want 0", v, o.Dot(v))
		}
	}
}

// =============================================================================
// FlipAroundUp Tests
// =============================================================================

func TestFlipAroundUp_Twice(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		q := randomRotation(rng)
		up := randomDirection(rng)

		twice := FlipAroundUp(FlipAroundUp(q, up), up)
		if !sameRotation(twice, q, 1e-9) {
			t.Errorf("flip twice = %v, want %v", twice, q)
		}
	}
}

func TestFlipAroundUp_PreservesUp(t *testing.T) {
	q, _ := LookRotation(mgl64.Vec3{1, 0, -1}, actor.AxisUp)

	flipped := FlipAroundUp(q, actor.AxisUp)

	if !vec3AlmostEqual(flipped.Rotate(actor.AxisUp), q.Rotate(actor.AxisUp), 1e-9) {
		t.Errorf("flipped up = %v, want %v", flipped.Rotate(actor.AxisUp), q.Rotate(actor.AxisUp))
	}
	if !vec3AlmostEqual(flipped.Rotate(actor.AxisForward), q.Rotate(actor.AxisForward).Mul(-1), 1e-9) {
		t.Errorf("flipped forward = %v, want %v", flipped.Rotate(actor.AxisForward), q.Rotate(actor.AxisForward).Mul(-1))
	}
}

// =============================================================================
// LocalRotationToTarget Tests
// =============================================================================

func TestLocalRotationToTarget_Scenario(t *testing.T) {
	tests := []struct {
		name        string
		flip        bool
		wantForward mgl64.Vec3
	}{
		{"no flip", false, mgl64.Vec3{0, 0, -1}},
		{"flip", true, mgl64.Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rotator := actor.NewTransform()
			target := actor.FromPosition(mgl64.Vec3{0, 0, -5})

			q := LocalRotationToTarget(rotator, target, nil, actor.AxisUp, tt.flip)
			tr := actor.FromPositionRotation(mgl64.Vec3{}, q)

			if !vec3AlmostEqual(tr.Forward(), tt.wantForward, 1e-9) {
				t.Errorf("Forward() = %v, want %v", tr.Forward(), tt.wantForward)
			}
			if !vec3AlmostEqual(tr.Up(), mgl64.Vec3{0, 1, 0}, 1e-9) {
				t.Errorf("Up() = %v, want {0,1,0}", tr.Up())
			}
		})
	}
}

func TestLocalRotationToTarget_ForwardProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		rotator := actor.FromPositionRotation(randomPosition(rng), randomRotation(rng))
		target := actor.FromPositionRotation(randomPosition(rng), randomRotation(rng))
		up := randomDirection(rng)
		flip := i%2 == 1

		var parent *actor.Transform
		if i%3 != 0 {
			p := actor.FromPositionRotation(randomPosition(rng), randomRotation(rng))
			parent = &p
		}

		local := LocalRotationToTarget(rotator, target, parent, up, flip)

		if !almostEqual(local.Len(), 1, 1e-9) {
			t.Fatalf("case %d: rotation length = %v, want 1", i, local.Len())
		}

		world := local
		if parent != nil {
			world = parent.Rotation.Mul(local)
		}

		want := target.Position.Sub(rotator.Position).Normalize()
		if flip {
			// flip mirrors the forward axis around up: the component along up is kept
			along := up.Mul(want.Dot(up))
			want = along.Mul(2).Sub(want)
		}

		forward := world.Rotate(actor.AxisForward)
		if !vec3AlmostEqual(forward, want, 1e-6) {
			t.Errorf("case %d: forward = %v, want %v", i, forward, want)
		}

		if !flip {
			// up stays on the same side of the look direction as the reference
			rightUp := world.Rotate(actor.AxisUp)
			if rightUp.Dot(up) < -1e-9 {
				t.Errorf("case %d: up = %v points away from reference %v", i, rightUp, up)
			}
		}
	}
}

func TestLocalRotationToTarget_Parent(t *testing.T) {
	parent := actor.FromPositionRotation(mgl64.Vec3{0, 0, 0}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))
	rotator := actor.FromPosition(mgl64.Vec3{0, 0, 0})
	target := actor.FromPosition(mgl64.Vec3{0, 0, -5})

	local := LocalRotationToTarget(rotator, target, &parent, actor.AxisUp, false)

	// the parent already yaws 90° left, the child must yaw 90° right to face -Z
	want := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{0, 1, 0})
	if !sameRotation(local, want, 1e-9) {
		t.Errorf("local rotation = %v, want %v", local, want)
	}
}

func TestLocalRotationToTarget_SamePosition(t *testing.T) {
	current := mgl64.QuatRotate(0.8, mgl64.Vec3{0, 1, 0})
	parent := actor.FromPositionRotation(mgl64.Vec3{1, 0, 0}, mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0}))
	rotator := actor.FromPositionRotation(mgl64.Vec3{2, 2, 2}, parent.Rotation.Mul(current))
	target := actor.FromPosition(mgl64.Vec3{2, 2, 2})

	for _, flip := range []bool{false, true} {
		local := LocalRotationToTarget(rotator, target, &parent, actor.AxisUp, flip)

		if !actor.QuatIsFinite(local) {
			t.Fatalf("flip=%v: rotation %v is not finite", flip, local)
		}
		if !sameRotation(local, current, 1e-9) {
			t.Errorf("flip=%v: rotation = %v, want current %v", flip, local, current)
		}
	}
}

func TestLocalRotationToTarget_IgnoresScale(t *testing.T) {
	rotator := actor.NewTransform()
	rotator.Scale = mgl64.Vec3{3, 0.5, 2}
	target := actor.FromPosition(mgl64.Vec3{4, 0, 0})
	target.Scale = mgl64.Vec3{10, 10, 10}

	scaled := LocalRotationToTarget(rotator, target, nil, actor.AxisUp, false)
	unscaled := LocalRotationToTarget(actor.NewTransform(), actor.FromPosition(mgl64.Vec3{4, 0, 0}), nil, actor.AxisUp, false)

	if !quatAlmostEqual(scaled, unscaled, 1e-12) {
		t.Errorf("scaled = %v, unscaled = %v", scaled, unscaled)
	}
}

// Helper function to compare floats with epsilon tolerance
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// Helper function to compare Vec3 with epsilon tolerance
func vec3AlmostEqual(a, b mgl64.Vec3, epsilon float64) bool {
	return almostEqual(a.X(), b.X(), epsilon) &&
		almostEqual(a.Y(), b.Y(), epsilon) &&
		almostEqual(a.Z(), b.Z(), epsilon)
}

// Helper function to compare quaternions with epsilon tolerance
func quatAlmostEqual(a, b mgl64.Quat, epsilon float64) bool {
	return almostEqual(a.W, b.W, epsilon) &&
		almostEqual(a.V.X(), b.V.X(), epsilon) &&
		almostEqual(a.V.Y(), b.V.Y(), epsilon) &&
		almostEqual(a.V.Z(), b.V.Z(), epsilon)
}

// sameRotation compares rotations, q and -q being the same rotation
func sameRotation(a, b mgl64.Quat, epsilon float64) bool {
	return almostEqual(math.Abs(a.Normalize().Dot(b.Normalize())), 1, epsilon)
}

func randomPosition(rng *rand.Rand) mgl64.Vec3 {
	return mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*20 - 10, rng.Float64()*20 - 10}
}

func randomDirection(rng *rand.Rand) mgl64.Vec3 {
	for {
		v := mgl64.Vec3{rng.Float64()*2 - 1, rng.Float64()*2 - 1, rng.Float64()*2 - 1}
		if l := v.Len(); l > 0.1 && l <= 1 {
			return v.Normalize()
		}
	}
}

func randomRotation(rng *rand.Rand) mgl64.Quat {
	return mgl64.QuatRotate(rng.Float64()*2*math.Pi, randomDirection(rng))
}
