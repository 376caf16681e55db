package merge

import (
	"maps"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// Instances maps a component id to the adjusted instance ordinal of its
// placement rule.
type Instances map[component.ID]int

// DeclaredInstances returns the declared ordinal of every rule.
func DeclaredInstances(rules map[component.ID]component.PlacementRule) Instances {
	out := make(Instances, len(rules))
	for id, r := range rules {
		out[id] = max(r.Instance, 1)
	}
	return out
}

// AdjustForRemoval returns the instances after the removed-th node with id
// anchor left the sequence: every rule placed relative to anchor whose
// adjusted ordinal is at least removed moves down by one, never below 1.
// instances is not modified.
func AdjustForRemoval(rules map[component.ID]component.PlacementRule, instances Instances, anchor component.ID, removed int) Instances {
	out := maps.Clone(instances)
	if out == nil {
		out = make(Instances)
	}
	for id, r := range rules {
		if !r.Action.Relative() || r.Anchor != anchor {
			continue
		}
		cur, ok := out[id]
		if !ok {
			cur = max(r.Instance, 1)
		}
		if cur >= removed && cur > 1 {
			cur--
		}
		out[id] = cur
	}
	return out
}
