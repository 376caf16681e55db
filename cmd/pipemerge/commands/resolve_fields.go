package commands

import (
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/merge"
)

// ResolveFieldsCmd implements the 'resolve-fields' command.
type ResolveFieldsCmd struct {
	Text   []string `arg:"" optional:"" help:"Text to resolve; joined with spaces"`
	File   string   `short:"f" help:"Read the text from a file instead" type:"existingfile"`
	Target string   `short:"t" help:"Target used for the built-in {@Target} field" default:"reference"`
	List   bool     `short:"l" help:"List the available field names and exit"`
}

// Run executes the resolve-fields command.
func (r *ResolveFieldsCmd) Run(g *Global, root *CLI) error {
	target, err := component.ParseTarget(r.Target)
	if err != nil {
		return errors.ValidationError(err.Error()).WithContext("flag", "--target").Build()
	}
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	set := fields.NewFields(cfg.Fields).With(map[string]string{
		merge.FieldTarget:     string(target),
		merge.FieldHelpFormat: cfg.Build.HelpFormat,
	})

	out := stdout(g)
	if r.List {
		for _, name := range set.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	text := strings.Join(r.Text, " ")
	if r.File != "" {
		data, err := os.ReadFile(r.File)
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to read input").
				WithContext("path", r.File).
				Build()
		}
		text = string(data)
	}
	if text == "" {
		return errors.ValidationError("no text given (pass it as arguments or with --file)").Build()
	}

	resolver := fields.NewResolver(cfg.Build.Substitution()...)
	resolved, err := resolver.Resolve(text, set.Lookup)
	if err != nil {
		return errors.WrapError(err, errors.CategoryTemplate, "field substitution failed").Build()
	}
	fmt.Fprintln(out, resolved)
	return nil
}
