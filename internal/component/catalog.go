package component

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk form of a set of component descriptors.
type Catalog struct {
	Components []CatalogEntry `yaml:"components"`
}

// CatalogEntry is one component in a YAML catalog.
type CatalogEntry struct {
	ID            string              `yaml:"id"`
	Description   string              `yaml:"description,omitempty"`
	Dependencies  []string            `yaml:"dependencies,omitempty"`
	Placement     CatalogPlacementSet `yaml:"placement"`
	Configuration string              `yaml:"configuration,omitempty"`
}

// CatalogPlacementSet holds the per-target placement of a catalog entry.
type CatalogPlacementSet struct {
	Reference  CatalogPlacement `yaml:"reference"`
	Conceptual CatalogPlacement `yaml:"conceptual"`
}

// CatalogPlacement is the YAML form of a PlacementRule.
type CatalogPlacement struct {
	Action   string `yaml:"action"`
	Anchor   string `yaml:"anchor,omitempty"`
	Instance int    `yaml:"instance,omitempty"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read component catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog. Unknown keys are rejected so
// misspelled placement fields do not silently become defaults.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("failed to parse component catalog: %w", err)
	}
	return &c, nil
}

// Descriptors converts the catalog into validated descriptors.
func (c *Catalog) Descriptors() ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(c.Components))
	for i, e := range c.Components {
		d, err := e.descriptor()
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%q): %w", i, e.ID, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// Registry builds a Registry from the catalog, optionally merged with extra
// descriptors (e.g. components declared inline in a project file).
func (c *Catalog) Registry(extra ...Descriptor) (*Registry, error) {
	descs, err := c.Descriptors()
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(descs, extra...)...)
}

func (e CatalogEntry) descriptor() (Descriptor, error) {
	id, err := ParseID(e.ID)
	if err != nil {
		return Descriptor{}, err
	}
	d := Descriptor{
		ID:                   id,
		Description:          e.Description,
		DefaultConfiguration: e.Configuration,
	}
	for _, dep := range e.Dependencies {
		depID, err := ParseID(dep)
		if err != nil {
			return Descriptor{}, fmt.Errorf("dependency: %w", err)
		}
		d.Dependencies = append(d.Dependencies, depID)
	}
	if d.Reference, err = e.Placement.Reference.rule(); err != nil {
		return Descriptor{}, fmt.Errorf("reference placement: %w", err)
	}
	if d.Conceptual, err = e.Placement.Conceptual.rule(); err != nil {
		return Descriptor{}, fmt.Errorf("conceptual placement: %w", err)
	}
	return d, nil
}

func (p CatalogPlacement) rule() (PlacementRule, error) {
	action, err := ParseAction(p.Action)
	if err != nil {
		return PlacementRule{}, err
	}
	rule := PlacementRule{Action: action, Instance: p.Instance}
	if p.Anchor != "" {
		if rule.Anchor, err = ParseID(p.Anchor); err != nil {
			return PlacementRule{}, fmt.Errorf("anchor: %w", err)
		}
	}
	return rule, rule.Validate()
}
