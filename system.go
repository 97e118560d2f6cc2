package rotateto

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/akmonengine/rotateto/actor"
	"github.com/akmonengine/rotateto/orient"
	"github.com/go-gl/mathgl/mgl64"
)

const DEFAULT_WORKERS = 1

// maxDepth bounds the parent walk when ordering the refresh, in case the host hierarchy has a cycle
const maxDepth = 1 << 16

type rotator[H comparable] struct {
	handle    H
	directive RotateTo[H]
}

type outcome uint8

const (
	// the rotator has no world transform or no local rotation this tick
	outcomeSkipped outcome = iota
	outcomeTargetNotFound
	// the rotator is linked to a parent without world transform
	outcomeParentNotFound
	outcomeUnchanged
	outcomeChanged
)

type refreshEntry[H comparable] struct {
	handle H
	depth  int
}

type result struct {
	outcome  outcome
	previous mgl64.Quat
	rotation mgl64.Quat
}

// System rotates the registered objects of a Hierarchy towards their targets.
// The zero value is not usable, see NewSystem.
type System[H comparable] struct {
	Hierarchy Hierarchy[H]
	// Goroutines used to compute the rotations, writes are always sequential
	Workers int
	// Component-wise tolerance under which a rotation is not written, RotationEpsilon if 0
	Epsilon float64
	// Optional, reports missing targets and failed refreshes
	Logger *slog.Logger

	Events Events[H]

	rotators []rotator[H]
	index    map[H]int
	results  []result
	changed  []H
}

func NewSystem[H comparable](hierarchy Hierarchy[H]) *System[H] {
	return &System[H]{
		Hierarchy: hierarchy,
		Workers:   DEFAULT_WORKERS,
		Events:    NewEvents[H](),
		index:     make(map[H]int),
	}
}

// Add registers h as a rotator, or replaces its directive
func (s *System[H]) Add(h H, directive RotateTo[H]) {
	if s.index == nil {
		s.index = make(map[H]int)
	}

	if k, ok := s.index[h]; ok {
		s.rotators[k].directive = directive
		return
	}

	s.index[h] = len(s.rotators)
	s.rotators = append(s.rotators, rotator[H]{handle: h, directive: directive})
}

// Remove unregisters h. It returns false if h was not registered.
func (s *System[H]) Remove(h H) bool {
	k, ok := s.index[h]
	if !ok {
		return false
	}

	s.rotators = append(s.rotators[:k], s.rotators[k+1:]...)
	delete(s.index, h)
	for i := k; i < len(s.rotators); i++ {
		s.index[s.rotators[i].handle] = i
	}

	s.Events.lazyInit()
	s.Events.forget(h)
	return true
}

func (s *System[H]) Directive(h H) (RotateTo[H], bool) {
	k, ok := s.index[h]
	if !ok {
		return RotateTo[H]{}, false
	}
	return s.rotators[k].directive, true
}

// Handles returns the registered rotators, in registration order
func (s *System[H]) Handles() []H {
	handles := make([]H, len(s.rotators))
	for i, r := range s.rotators {
		handles[i] = r.handle
	}
	return handles
}

func (s *System[H]) Len() int {
	return len(s.rotators)
}

// Changed returns the rotators whose local rotation was written by the last Update
func (s *System[H]) Changed() []H {
	return append([]H(nil), s.changed...)
}

// Step runs one tick: Update, Refresh, then sends the buffered events.
// It must be called after the host propagated the world transforms of the tick.
// The returned error joins every RefreshError of the tick.
func (s *System[H]) Step() error {
	s.Update()
	err := s.Refresh()
	s.Flush()

	return err
}

// Update computes the rotation of every rotator and writes the ones that changed.
// A rotator with a missing target is reported and keeps its rotation; the others are not affected.
// A rotator linked to a parent without world transform keeps its rotation too.
func (s *System[H]) Update() {
	s.Events.lazyInit()
	s.changed = s.changed[:0]

	if cap(s.results) < len(s.rotators) {
		s.results = make([]result, len(s.rotators))
	}
	s.results = s.results[:len(s.rotators)]

	// Phase 1: compute, read-only on the hierarchy
	task(max(DEFAULT_WORKERS, s.Workers), s.rotators, func(i int, r rotator[H]) {
		s.results[i] = s.compute(r)
	})

	// Phase 2: apply, in registration order
	for i, r := range s.rotators {
		res := s.results[i]

		switch res.outcome {
		case outcomeTargetNotFound:
			s.Events.recordMissing(r.handle, r.directive.Target)
			if s.Logger != nil {
				err := &TargetError[H]{Rotator: r.handle, Target: r.directive.Target}
				s.Logger.Error("rotation skipped", "rotator", r.handle, "target", r.directive.Target, "err", err)
			}
		case outcomeSkipped:
			s.Events.recordSkipped(r.handle)
		case outcomeParentNotFound:
			s.Events.recordSkipped(r.handle)
			if s.Logger != nil {
				s.Logger.Warn("rotation skipped, parent not found", "rotator", r.handle)
			}
		case outcomeUnchanged:
			s.Events.recordResolved(r.handle, r.directive.Target)
		case outcomeChanged:
			s.Hierarchy.SetLocalRotation(r.handle, res.rotation)
			s.changed = append(s.changed, r.handle)
			s.Events.recordResolved(r.handle, r.directive.Target)
			s.Events.emitRotationChanged(r.handle, res.previous, res.rotation)
		}
	}
}

func (s *System[H]) compute(r rotator[H]) result {
	rotatorWorld, ok := s.Hierarchy.WorldTransform(r.handle)
	if !ok {
		return result{outcome: outcomeSkipped}
	}
	current, ok := s.Hierarchy.LocalRotation(r.handle)
	if !ok {
		return result{outcome: outcomeSkipped}
	}

	targetWorld, ok := s.Hierarchy.WorldTransform(r.directive.Target)
	if !ok {
		return result{outcome: outcomeTargetNotFound}
	}

	if !rotatorWorld.IsFinite() || !targetWorld.IsFinite() {
		return result{outcome: outcomeSkipped}
	}

	var parentWorld *actor.Transform
	if parent, ok := s.Hierarchy.Parent(r.handle); ok {
		world, ok := s.Hierarchy.WorldTransform(parent)
		if !ok {
			return result{outcome: outcomeParentNotFound}
		}
		parentWorld = &world
	}

	up := orient.ResolveUp(r.directive.Up, targetWorld, parentWorld)
	rotation := orient.LocalRotationToTarget(rotatorWorld, targetWorld, parentWorld, up, r.directive.FlipVertical)

	// NaN or Inf inputs from the host, never write them
	if !actor.QuatIsFinite(rotation) {
		return result{outcome: outcomeSkipped}
	}
	if actor.QuatAbsDiffEq(rotation, current, s.epsilon()) {
		return result{outcome: outcomeUnchanged}
	}

	return result{outcome: outcomeChanged, previous: current, rotation: rotation}
}

// Refresh recomputes the world transform of every rotator written by the last Update,
// parents before their descendants, so later readers of the tick see the new rotations.
// A failed recomputation is never ignored: it is sent as an event and returned.
func (s *System[H]) Refresh() error {
	if len(s.changed) == 0 {
		return nil
	}
	s.Events.lazyInit()

	ordered := make([]refreshEntry[H], len(s.changed))
	for i, h := range s.changed {
		ordered[i] = refreshEntry[H]{handle: h, depth: s.depth(h)}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].depth < ordered[j].depth
	})

	var errs []error
	for _, e := range ordered {
		world, err := s.Hierarchy.ComputeWorldTransform(e.handle)
		if err != nil {
			refreshErr := &RefreshError[H]{Rotator: e.handle, Err: err}
			s.Events.emitRefreshFailed(e.handle, refreshErr)
			if s.Logger != nil {
				s.Logger.Error("world transform refresh failed", "rotator", e.handle, "err", err)
			}
			errs = append(errs, refreshErr)
			continue
		}

		s.Hierarchy.SetWorldTransform(e.handle, world)
	}

	return errors.Join(errs...)
}

// Flush sends the buffered events to the listeners. Step calls it.
func (s *System[H]) Flush() {
	s.Events.lazyInit()
	s.Events.flush()
}

func (s *System[H]) depth(h H) int {
	depth := 0
	for parent, ok := s.Hierarchy.Parent(h); ok && depth < maxDepth; parent, ok = s.Hierarchy.Parent(parent) {
		depth++
	}
	return depth
}

func (s *System[H]) epsilon() float64 {
	if s.Epsilon > 0 {
		return s.Epsilon
	}
	return RotationEpsilon
}
