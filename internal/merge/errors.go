package merge

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// ErrPlacementAnchorMissing matches any *PlacementAnchorMissingError.
var ErrPlacementAnchorMissing = errors.New("placement anchor missing")

// PlacementAnchorMissingError reports that fewer than Instance nodes with
// the anchor id exist in the sequence.
type PlacementAnchorMissingError struct {
	Component component.ID
	Action    component.Action
	Anchor    component.ID
	Instance  int
	Found     int
}

func (e *PlacementAnchorMissingError) Error() string {
	return fmt.Sprintf("component %q cannot be placed %s instance %d of %q: %d present",
		e.Component, e.Action, e.Instance, e.Anchor, e.Found)
}

func (e *PlacementAnchorMissingError) Is(target error) bool {
	return target == ErrPlacementAnchorMissing
}

// Error is a fatal merge failure with the context needed to report it.
type Error struct {
	Target    component.Target
	Component component.ID
	// Format is the branch format, empty for the root sequence.
	Format string
	// Dependency is set when the failure happened while merging a
	// dependency of Component.
	Dependency component.ID
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: merge %q", e.Target, e.Component)
	if e.Format != "" {
		msg += fmt.Sprintf(" (format %s)", e.Format)
	}
	if e.Dependency != "" {
		msg += fmt.Sprintf(" dependency %q", e.Dependency)
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }
