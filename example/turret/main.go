package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/akmonengine/rotateto"
	"github.com/akmonengine/rotateto/actor"
	"github.com/akmonengine/rotateto/orient"
	"github.com/akmonengine/rotateto/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Scene holds the handles of the demo objects
type Scene struct {
	Graph  *scene.Graph
	Base   scene.Handle
	Turret scene.Handle
	Barrel scene.Handle
	Drone  scene.Handle
}

// SetupScene creates a tilted base carrying a turret, and a drone flying around it.
// The turret follows the drone, keeping the base up; the barrel looks at it too, flipped.
func SetupScene() Scene {
	g := scene.NewGraph()

	base := g.Spawn(actor.FromPositionRotation(
		mgl64.Vec3{0, 0, 0},
		mgl64.QuatRotate(mgl64.DegToRad(10), mgl64.Vec3{0, 0, 1}),
	))
	turret, _ := g.SpawnChild(base, actor.FromPosition(mgl64.Vec3{0, 1, 0}))
	barrel, _ := g.SpawnChild(turret, actor.FromPosition(mgl64.Vec3{0, 0.5, -1}))
	drone := g.Spawn(actor.FromPosition(mgl64.Vec3{0, 4, -10}))

	g.Propagate()

	return Scene{Graph: g, Base: base, Turret: turret, Barrel: barrel, Drone: drone}
}

func main() {
	s := SetupScene()

	system := rotateto.NewSystem[scene.Handle](s.Graph)
	system.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	system.Add(s.Turret, rotateto.RotateTo[scene.Handle]{Target: s.Drone, Up: orient.ParentUp()})
	system.Add(s.Barrel, rotateto.RotateTo[scene.Handle]{Target: s.Drone, Up: orient.MustFixedUp(actor.AxisUp), FlipVertical: true})

	system.Events.Subscribe(rotateto.TARGET_ACQUIRED, func(event rotateto.Event) {
		e := event.(rotateto.TargetAcquiredEvent[scene.Handle])
		fmt.Printf("  %v acquired %v\n", e.Rotator, e.Target)
	})
	system.Events.Subscribe(rotateto.TARGET_LOST, func(event rotateto.Event) {
		e := event.(rotateto.TargetLostEvent[scene.Handle])
		fmt.Printf("  %v lost %v\n", e.Rotator, e.Target)
	})

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 120

	for step := 0; step < maxSteps; step++ {
		// the drone circles the base
		angle := float64(step) * dt * math.Pi
		_ = s.Graph.SetLocal(s.Drone, actor.FromPosition(mgl64.Vec3{10 * math.Sin(angle), 4, -10 * math.Cos(angle)}))
		if step == maxSteps-10 {
			s.Graph.Despawn(s.Drone)
		}

		s.Graph.Propagate()
		if err := system.Step(); err != nil {
			fmt.Printf("step %d: %v\n", step+1, err)
			continue
		}

		if step%20 == 0 {
			turret, _ := s.Graph.WorldTransform(s.Turret)
			barrel, _ := s.Graph.WorldTransform(s.Barrel)
			drone, _ := s.Graph.WorldTransform(s.Drone)

			fmt.Printf("--- STEP %d ---\n", step+1)
			fmt.Printf("  Drone position:  %v\n", drone.Position)
			fmt.Printf("  Turret forward:  %v\n", turret.Forward())
			fmt.Printf("  Turret up:       %v\n", turret.Up())
			fmt.Printf("  Barrel forward:  %v\n", barrel.Forward())
			fmt.Printf("  Rotations written: %d\n", len(system.Changed()))
		}
	}
}
