package component

import "fmt"

// Descriptor is the catalog entry of a component.
type Descriptor struct {
	ID          ID
	Description string

	// DefaultConfiguration is the template text merged when the component is
	// pulled in as a dependency. It may contain field tags.
	DefaultConfiguration string

	// Dependencies lists components that must be present before this one.
	Dependencies []ID

	Reference  PlacementRule
	Conceptual PlacementRule
}

// Rule returns the placement rule for target.
func (d *Descriptor) Rule(target Target) PlacementRule {
	if target == TargetConceptual {
		return d.Conceptual
	}
	return d.Reference
}

// validate checks internal consistency of a descriptor.
func (d *Descriptor) validate() error {
	if _, err := ParseID(string(d.ID)); err != nil {
		return err
	}
	seen := make(map[ID]struct{}, len(d.Dependencies))
	for _, dep := range d.Dependencies {
		if _, err := ParseID(string(dep)); err != nil {
			return fmt.Errorf("dependency: %w", err)
		}
		if dep == d.ID {
			return fmt.Errorf("component %q depends on itself", d.ID)
		}
		if _, dup := seen[dep]; dup {
			return fmt.Errorf("component %q lists dependency %q twice", d.ID, dep)
		}
		seen[dep] = struct{}{}
	}
	for _, target := range Targets {
		rule := d.Rule(target)
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("%s placement: %w", target, err)
		}
		if !rule.Anchor.IsZero() {
			if _, err := ParseID(string(rule.Anchor)); err != nil {
				return fmt.Errorf("%s placement anchor: %w", target, err)
			}
		}
		d.setRule(target, rule)
	}
	return nil
}

func (d *Descriptor) setRule(target Target, rule PlacementRule) {
	if target == TargetConceptual {
		d.Conceptual = rule
		return
	}
	d.Reference = rule
}
