package commands

import (
	stderrors "errors"
	"fmt"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
	"git.home.luguber.info/inful/pipemerge/internal/resolve"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

// Run executes the validate command.
func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	out := stdout(g)
	if err := validateProject(cfg); err != nil {
		fmt.Fprintln(out, "Configuration is invalid:")
		for _, e := range split(err) {
			fmt.Fprintf(out, "  - %s\n", e)
		}
		return err
	}
	fmt.Fprintf(out, "Configuration %s is valid\n", cfg.Path())
	return nil
}

// validateProject checks everything a merge depends on besides field
// values: the catalog graph, the requested ids and the templates.
func validateProject(cfg *config.Config) error {
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	var errs []error
	if err := resolve.Validate(reg); err != nil {
		for _, e := range split(err) {
			errs = append(errs, errors.WrapError(e, errors.CategoryDependency, "invalid component graph").Build())
		}
	}
	for _, c := range cfg.Components {
		id := component.ID(c.ID)
		if !reg.Has(id) {
			errs = append(errs, errors.NotFoundError(fmt.Sprintf("requested component %q is not in the catalog", id)).
				WithContext("component", c.ID).
				Build())
		}
	}
	for _, t := range cfg.Targets() {
		if _, err := pipeline.Load(cfg.Template(t), t, component.ID(cfg.Build.ContainerID)); err != nil {
			errs = append(errs, errors.WrapError(err, errors.CategoryTemplate, "invalid pipeline template").
				WithContext("target", string(t)).
				WithContext("path", cfg.Template(t)).
				Build())
		}
	}
	return stderrors.Join(errs...)
}

// split returns the errors joined in err, or err itself.
func split(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
