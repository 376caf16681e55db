package component

import (
	"fmt"
	"maps"
	"slices"
)

// Registry is a read-only lookup of component descriptors. It must not be
// modified after construction; all accessors return copies.
type Registry struct {
	byID map[ID]Descriptor
	ids  []ID
}

// NewRegistry validates descs and builds a registry from them.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byID: make(map[ID]Descriptor, len(descs))}
	for _, d := range descs {
		d.Dependencies = slices.Clone(d.Dependencies)
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("component %q: %w", d.ID, err)
		}
		if _, exists := r.byID[d.ID]; exists {
			return nil, fmt.Errorf("component %q registered twice", d.ID)
		}
		r.byID[d.ID] = d
	}
	r.ids = slices.Sorted(maps.Keys(r.byID))
	return r, nil
}

// Get returns the descriptor for id.
func (r *Registry) Get(id ID) (Descriptor, bool) {
	d, ok := r.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	d.Dependencies = slices.Clone(d.Dependencies)
	return d, true
}

// Has reports whether id is registered.
func (r *Registry) Has(id ID) bool {
	_, ok := r.byID[id]
	return ok
}

// Dependencies returns the declared dependencies of id in declaration order.
func (r *Registry) Dependencies(id ID) []ID {
	return slices.Clone(r.byID[id].Dependencies)
}

// IDs returns every registered id in sorted order.
func (r *Registry) IDs() []ID { return slices.Clone(r.ids) }

// Len returns the number of registered components.
func (r *Registry) Len() int { return len(r.ids) }

// Rule returns the placement rule of id for target.
func (r *Registry) Rule(id ID, target Target) (PlacementRule, bool) {
	d, ok := r.byID[id]
	if !ok {
		return PlacementRule{}, false
	}
	return d.Rule(target), true
}

// Rules returns the placement rule of every component for target.
func (r *Registry) Rules(target Target) map[ID]PlacementRule {
	out := make(map[ID]PlacementRule, len(r.byID))
	for id, d := range r.byID {
		out[id] = d.Rule(target)
	}
	return out
}

// MissingDependencies returns, per component, the dependency ids that are
// not registered. Components without missing dependencies are omitted.
func (r *Registry) MissingDependencies() map[ID][]ID {
	out := make(map[ID][]ID)
	for _, id := range r.ids {
		for _, dep := range r.byID[id].Dependencies {
			if !r.Has(dep) {
				out[id] = append(out[id], dep)
			}
		}
	}
	return out
}
