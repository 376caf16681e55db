package commands

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/resolve"
)

// VisualizeCmd implements the 'visualize' command.
type VisualizeCmd struct {
	Format string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Target string `short:"t" help:"Target whose placements are shown (reference, conceptual)" default:"reference"`
	Output string `short:"o" help:"Output file path (optional, prints to stdout if not specified)" type:"path"`
	List   bool   `short:"l" help:"List available formats and exit"`
}

// Run executes the visualize command.
func (v *VisualizeCmd) Run(g *Global, root *CLI) error {
	out := stdout(g)
	if v.List {
		fmt.Fprintln(out, "Available visualization formats:")
		fmt.Fprintln(out)
		for _, format := range resolve.GetSupportedFormats() {
			fmt.Fprintf(out, "  %-10s %s\n", format, resolve.GetFormatDescription(format))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Usage examples:")
		fmt.Fprintln(out, "  pipemerge visualize                     # Text format to stdout")
		fmt.Fprintln(out, "  pipemerge visualize -f mermaid          # Mermaid diagram to stdout")
		fmt.Fprintln(out, "  pipemerge visualize -f dot -o graph.dot # DOT format to file")
		return nil
	}

	target, err := component.ParseTarget(v.Target)
	if err != nil {
		return errors.ValidationError(err.Error()).WithContext("flag", "--target").Build()
	}
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	output, err := resolve.Visualize(reg, target, resolve.VisualizationFormat(v.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryDependency, "failed to visualize component graph").Build()
	}

	if v.Output != "" {
		if err := os.WriteFile(v.Output, []byte(output), 0o644); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output file").
				WithContext("path", v.Output).
				Build()
		}
		g.Logger.Info("Component graph written", logfields.Path(v.Output), logfields.Format(v.Format))
		return nil
	}
	fmt.Fprint(out, output)
	return nil
}
