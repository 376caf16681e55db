package component

import (
	"errors"
	"fmt"
	"strings"
)

// Target names one of the two pipelines a component can be placed in.
type Target string

const (
	TargetReference  Target = "reference"
	TargetConceptual Target = "conceptual"
)

// Targets lists every target in processing order.
var Targets = []Target{TargetReference, TargetConceptual}

// ParseTarget parses a target name case-insensitively.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown target %q (want reference or conceptual)", s)
	}
	return t, nil
}

// IsValid reports whether t is a known target.
func (t Target) IsValid() bool {
	return t == TargetReference || t == TargetConceptual
}

// Action is the placement strategy of a component within a pipeline.
type Action string

const (
	ActionNone    Action = "none"
	ActionStart   Action = "start"
	ActionEnd     Action = "end"
	ActionBefore  Action = "before"
	ActionAfter   Action = "after"
	ActionReplace Action = "replace"
)

// ParseAction parses an action name case-insensitively. The empty string
// parses as ActionNone.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if a == "" {
		return ActionNone, nil
	}
	switch a {
	case ActionNone, ActionStart, ActionEnd, ActionBefore, ActionAfter, ActionReplace:
		return a, nil
	}
	return "", fmt.Errorf("unknown placement action %q", s)
}

// Relative reports whether the action is addressed relative to an anchor.
func (a Action) Relative() bool {
	return a == ActionBefore || a == ActionAfter || a == ActionReplace
}

// ErrInvalidPlacement indicates a placement rule is internally inconsistent.
var ErrInvalidPlacement = errors.New("invalid placement rule")

// PlacementRule declares where a component goes in one target's pipeline.
// Instance is the 1-based ordinal of the anchor among same-id siblings.
type PlacementRule struct {
	Action   Action
	Anchor   ID
	Instance int
}

// Validate checks the rule and normalizes a zero instance to 1.
func (r *PlacementRule) Validate() error {
	if r.Action == "" {
		r.Action = ActionNone
	}
	if r.Instance == 0 {
		r.Instance = 1
	}
	if r.Instance < 0 {
		return fmt.Errorf("%w: instance %d must be positive", ErrInvalidPlacement, r.Instance)
	}
	if r.Action.Relative() && r.Anchor.IsZero() {
		return fmt.Errorf("%w: action %s requires an anchor id", ErrInvalidPlacement, r.Action)
	}
	return nil
}

// String renders the rule for logs and visualizations.
func (r PlacementRule) String() string {
	if r.Action.Relative() {
		return fmt.Sprintf("%s %s@%d", r.Action, r.Anchor, r.Instance)
	}
	return string(r.Action)
}
