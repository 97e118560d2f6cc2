package rotateto

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	TARGET_NOT_FOUND EventType = iota
	TARGET_LOST
	TARGET_ACQUIRED
	ROTATION_CHANGED
	REFRESH_FAILED
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// TargetNotFoundEvent is sent on every tick a rotator target does not resolve
type TargetNotFoundEvent[H comparable] struct {
	Rotator H
	Target  H
}

func (e TargetNotFoundEvent[H]) Type() EventType { return TARGET_NOT_FOUND }

// Err returns the event as a *TargetError
func (e TargetNotFoundEvent[H]) Err() error {
	return &TargetError[H]{Rotator: e.Rotator, Target: e.Target}
}

// TargetLostEvent is sent once when a target that resolved on the previous tick stops resolving
type TargetLostEvent[H comparable] struct {
	Rotator H
	Target  H
}

func (e TargetLostEvent[H]) Type() EventType { return TARGET_LOST }

// TargetAcquiredEvent is sent once when a rotator target starts resolving, including on its first tick
type TargetAcquiredEvent[H comparable] struct {
	Rotator H
	Target  H
}

func (e TargetAcquiredEvent[H]) Type() EventType { return TARGET_ACQUIRED }

// RotationChangedEvent is sent when a local rotation is written
type RotationChangedEvent[H comparable] struct {
	Rotator  H
	Previous mgl64.Quat
	Rotation mgl64.Quat
}

func (e RotationChangedEvent[H]) Type() EventType { return ROTATION_CHANGED }

type RefreshFailedEvent[H comparable] struct {
	Rotator H
	Err     error
}

func (e RefreshFailedEvent[H]) Type() EventType { return REFRESH_FAILED }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events[H comparable] struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Target tracking for Lost/Acquired detection, rotator => target
	previousResolved map[H]H
	currentResolved  map[H]H
	currentMissing   map[H]H
}

func NewEvents[H comparable]() Events[H] {
	return Events[H]{
		listeners:        make(map[EventType][]EventListener),
		buffer:           make([]Event, 0, 64),
		previousResolved: make(map[H]H),
		currentResolved:  make(map[H]H),
		currentMissing:   make(map[H]H),
	}
}

func (e *Events[H]) lazyInit() {
	if e.listeners == nil {
		*e = NewEvents[H]()
	}
}

// Subscribe adds a listener for an event type
func (e *Events[H]) Subscribe(eventType EventType, listener EventListener) {
	e.lazyInit()
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events[H]) recordResolved(rotator, target H) {
	e.currentResolved[rotator] = target
}

// recordSkipped keeps the previous resolution of a rotator that was not evaluated this tick
func (e *Events[H]) recordSkipped(rotator H) {
	if target, ok := e.previousResolved[rotator]; ok {
		e.currentResolved[rotator] = target
	}
}

func (e *Events[H]) recordMissing(rotator, target H) {
	e.currentMissing[rotator] = target
	e.buffer = append(e.buffer, TargetNotFoundEvent[H]{Rotator: rotator, Target: target})
}

func (e *Events[H]) emitRotationChanged(rotator H, previous, rotation mgl64.Quat) {
	e.buffer = append(e.buffer, RotationChangedEvent[H]{Rotator: rotator, Previous: previous, Rotation: rotation})
}

func (e *Events[H]) emitRefreshFailed(rotator H, err error) {
	e.buffer = append(e.buffer, RefreshFailedEvent[H]{Rotator: rotator, Err: err})
}

// forget drops the tracking state of a rotator, so no Lost event is sent for it
func (e *Events[H]) forget(rotator H) {
	delete(e.previousResolved, rotator)
	delete(e.currentResolved, rotator)
	delete(e.currentMissing, rotator)
}

// processTargetEvents compares current and previous resolutions to detect Acquired/Lost
// Should be called once per tick, after the update
func (e *Events[H]) processTargetEvents() {
	for rotator, target := range e.currentResolved {
		if previous, ok := e.previousResolved[rotator]; !ok || previous != target {
			e.buffer = append(e.buffer, TargetAcquiredEvent[H]{Rotator: rotator, Target: target})
		}
	}

	for rotator, target := range e.currentMissing {
		if previous, ok := e.previousResolved[rotator]; ok && previous == target {
			e.buffer = append(e.buffer, TargetLostEvent[H]{Rotator: rotator, Target: target})
		}
	}

	// Swap for next tick and clear current
	e.previousResolved, e.currentResolved = e.currentResolved, e.previousResolved
	clear(e.currentResolved)
	clear(e.currentMissing)
}

// flush sends all buffered events and clears the buffer
func (e *Events[H]) flush() {
	e.processTargetEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
