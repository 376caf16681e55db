package resolve

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// Validate reports every unknown dependency and every distinct dependency
// cycle in reg. The result is nil or an errors.Join of
// *UnknownDependencyError and *CircularDependencyError values.
func Validate(reg *component.Registry) error {
	var errs []error

	missing := reg.MissingDependencies()
	for _, id := range slices.Sorted(maps.Keys(missing)) {
		for _, dep := range missing[id] {
			errs = append(errs, &UnknownDependencyError{Requesting: id, Missing: dep})
		}
	}

	if _, err := Order(reg); err != nil {
		r := New(reg)
		skipMissing := func(id component.ID) bool { return !reg.Has(id) }
		seen := make(map[string]bool)
		for _, id := range reg.IDs() {
			_, err := r.Require(id, skipMissing)
			var cycle *CircularDependencyError
			if !errors.As(err, &cycle) || seen[cycle.key()] {
				continue
			}
			seen[cycle.key()] = true
			errs = append(errs, cycle)
		}
	}

	return errors.Join(errs...)
}

// Order returns every registered component so that each appears after its
// dependencies. Ties are broken by id. Dependencies that are not registered
// are ignored.
func Order(reg *component.Registry) ([]component.ID, error) {
	ids := reg.IDs()
	dependents := make(map[component.ID][]component.ID, len(ids))
	inDegree := make(map[component.ID]int, len(ids))
	for _, id := range ids {
		for _, dep := range reg.Dependencies(id) {
			if !reg.Has(dep) {
				continue
			}
			dependents[dep] = append(dependents[dep], id)
			inDegree[id]++
		}
	}

	var queue []component.ID
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]component.ID, 0, len(ids))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, current)

		for _, next := range dependents[current] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
				slices.Sort(queue)
			}
		}
	}

	if len(result) != len(ids) {
		var unvisited []component.ID
		for _, id := range ids {
			if inDegree[id] > 0 {
				unvisited = append(unvisited, id)
			}
		}
		return nil, fmt.Errorf("%w involving components: %v", ErrCircularDependency, unvisited)
	}
	return result, nil
}
