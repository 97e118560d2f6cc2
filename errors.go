package rotateto

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetNotFound is reported when a target handle does not resolve to a world transform.
	// The rotator is skipped for the tick and keeps its previous rotation.
	ErrTargetNotFound = errors.New("target not found")
	// ErrRefreshFailed is returned when the world transform of a rotated object cannot be recomputed.
	// Its cached world transform is stale for the rest of the tick.
	ErrRefreshFailed = errors.New("world transform refresh failed")
)

type TargetError[H comparable] struct {
	Rotator H
	Target  H
}

func (e *TargetError[H]) Error() string {
	return fmt.Sprintf("rotator %v: %v: %v", e.Rotator, ErrTargetNotFound, e.Target)
}

func (e *TargetError[H]) Unwrap() error {
	return ErrTargetNotFound
}

type RefreshError[H comparable] struct {
	Rotator H
	Err     error
}

func (e *RefreshError[H]) Error() string {
	return fmt.Sprintf("rotator %v: %v: %v", e.Rotator, ErrRefreshFailed, e.Err)
}

func (e *RefreshError[H]) Unwrap() []error {
	return []error{ErrRefreshFailed, e.Err}
}
