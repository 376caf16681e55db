package component

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistry_LookupAndRules(t *testing.T) {
	reg, err := NewRegistry(
		Descriptor{ID: "B", Reference: PlacementRule{Action: ActionEnd}},
		Descriptor{
			ID:           "A",
			Dependencies: []ID{"B"},
			Reference:    PlacementRule{Action: ActionBefore, Anchor: "M", Instance: 2},
			Conceptual:   PlacementRule{Action: ActionStart},
		},
	)
	require.NoError(t, err)

	require.Equal(t, 2, reg.Len())
	require.Equal(t, []ID{"A", "B"}, reg.IDs())
	require.True(t, reg.Has("A"))
	require.False(t, reg.Has("C"))

	rule, ok := reg.Rule("A", TargetReference)
	require.True(t, ok)
	require.Equal(t, PlacementRule{Action: ActionBefore, Anchor: "M", Instance: 2}, rule)

	rules := reg.Rules(TargetConceptual)
	require.Equal(t, ActionStart, rules["A"].Action)
	require.Equal(t, ActionNone, rules["B"].Action, "unset rules normalize to none")
	require.Equal(t, 1, rules["B"].Instance)
}

func TestRegistry_GetReturnsCopies(t *testing.T) {
	reg, err := NewRegistry(Descriptor{ID: "A", Dependencies: []ID{"B"}})
	require.NoError(t, err)

	d, ok := reg.Get("A")
	require.True(t, ok)
	d.Dependencies[0] = "mutated"

	require.Equal(t, []ID{"B"}, reg.Dependencies("A"))
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		descs []Descriptor
	}{
		{"duplicate id", []Descriptor{{ID: "A"}, {ID: "A"}}},
		{"self dependency", []Descriptor{{ID: "A", Dependencies: []ID{"A"}}}},
		{"duplicate dependency", []Descriptor{{ID: "A", Dependencies: []ID{"B", "B"}}}},
		{"invalid id", []Descriptor{{ID: " A"}}},
		{"invalid dependency id", []Descriptor{{ID: "A", Dependencies: []ID{""}}}},
		{"relative rule without anchor", []Descriptor{{ID: "A", Reference: PlacementRule{Action: ActionAfter}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.descs...)
			require.Error(t, err)
		})
	}
}

func TestRegistry_MissingDependencies(t *testing.T) {
	reg, err := NewRegistry(
		Descriptor{ID: "A", Dependencies: []ID{"B", "X"}},
		Descriptor{ID: "B", Dependencies: []ID{"Y"}},
	)
	require.NoError(t, err)

	require.Equal(t, map[ID][]ID{"A": {"X"}, "B": {"Y"}}, reg.MissingDependencies())
}
