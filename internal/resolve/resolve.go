package resolve

import (
	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/util/sets"
)

// Resolver walks the dependency lists of a registry.
type Resolver struct {
	reg *component.Registry
}

// New creates a resolver over reg.
func New(reg *component.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Require returns the dependencies of id that must be merged before it, each
// after its own dependencies and without duplicates. id itself is never part
// of the result. Dependencies for which present returns true are pruned
// together with their own dependencies; a nil present prunes nothing.
// Pruned dependencies are still walked for cycles.
func (r *Resolver) Require(id component.ID, present func(component.ID) bool) ([]component.ID, error) {
	if !r.reg.Has(id) {
		return nil, &UnknownComponentError{ID: id}
	}
	if present == nil {
		present = func(component.ID) bool { return false }
	}
	w := walk{
		reg:       r.reg,
		present:   present,
		scheduled: sets.New[component.ID](),
		checked:   sets.New[component.ID](),
	}
	if err := w.visit(id, sets.NewOrdered[component.ID]()); err != nil {
		return nil, err
	}
	return w.order, nil
}

type walk struct {
	reg       *component.Registry
	present   func(component.ID) bool
	scheduled sets.Set[component.ID]
	// checked holds ids already walked by cycles.
	checked sets.Set[component.ID]
	order   []component.ID
}

// visit receives the resolving set by value; additions made for id are not
// seen by the caller.
func (w *walk) visit(id component.ID, resolving sets.Ordered[component.ID]) error {
	resolving = resolving.With(id)
	for _, dep := range w.reg.Dependencies(id) {
		if resolving.Has(dep) {
			path := append(resolving.From(resolving.IndexOf(dep)), dep)
			return &CircularDependencyError{Path: path}
		}
		if w.scheduled.Has(dep) {
			continue
		}
		if w.present(dep) {
			if w.checked.Has(dep) {
				continue
			}
			if err := w.cycles(dep, resolving); err != nil {
				return err
			}
			continue
		}
		if !w.reg.Has(dep) {
			return &UnknownDependencyError{Requesting: id, Missing: dep}
		}
		if err := w.visit(dep, resolving); err != nil {
			return err
		}
		w.scheduled.Add(dep)
		w.order = append(w.order, dep)
	}
	return nil
}

// cycles walks the dependencies of a pruned id without scheduling anything.
// Unknown ids below a pruned dependency are not reported.
func (w *walk) cycles(id component.ID, resolving sets.Ordered[component.ID]) error {
	resolving = resolving.With(id)
	for _, dep := range w.reg.Dependencies(id) {
		if resolving.Has(dep) {
			path := append(resolving.From(resolving.IndexOf(dep)), dep)
			return &CircularDependencyError{Path: path}
		}
		if w.scheduled.Has(dep) || w.checked.Has(dep) || !w.reg.Has(dep) {
			continue
		}
		if err := w.cycles(dep, resolving); err != nil {
			return err
		}
	}
	w.checked.Add(id)
	return nil
}
