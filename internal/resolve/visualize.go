package resolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// VisualizationFormat represents the output format for graph visualization.
type VisualizationFormat string

const (
	FormatText    VisualizationFormat = "text"
	FormatMermaid VisualizationFormat = "mermaid"
	FormatDOT     VisualizationFormat = "dot"
	FormatJSON    VisualizationFormat = "json"
)

// Visualize renders the dependency graph of reg in dependency order, showing
// each component's placement for target.
func Visualize(reg *component.Registry, target component.Target, format VisualizationFormat) (string, error) {
	order, err := Order(reg)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatText:
		return visualizeText(reg, target, order), nil
	case FormatMermaid:
		return visualizeMermaid(reg, order), nil
	case FormatDOT:
		return visualizeDOT(reg, target, order), nil
	case FormatJSON:
		return visualizeJSON(reg, target, order)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// visualizeText creates a text-based visualization with ASCII art.
func visualizeText(reg *component.Registry, target component.Target, order []component.ID) string {
	var sb strings.Builder

	title := fmt.Sprintf("Component Graph (%s)", target)
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	for i, id := range order {
		prefix := "├──"
		connector := "│  "
		if i == len(order)-1 {
			prefix = "└──"
			connector = "   "
		}
		rule, _ := reg.Rule(id, target)
		fmt.Fprintf(&sb, "%s [%s] %s\n", prefix, id, rule)
		if deps := reg.Dependencies(id); len(deps) > 0 {
			fmt.Fprintf(&sb, "%s   ⤷ depends on: %s\n", connector, joinIDs(deps))
		}
	}

	fmt.Fprintf(&sb, "\nTotal: %d components\n", len(order))
	return sb.String()
}

// visualizeMermaid creates a Mermaid diagram. Node names are positional
// because component ids may contain spaces and punctuation.
func visualizeMermaid(reg *component.Registry, order []component.ID) string {
	var sb strings.Builder

	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")

	names := make(map[component.ID]string, len(order))
	for i, id := range order {
		names[id] = fmt.Sprintf("c%d", i)
		fmt.Fprintf(&sb, "    %s[%q]\n", names[id], string(id))
	}

	sb.WriteString("\n")
	for _, id := range order {
		for _, dep := range reg.Dependencies(id) {
			depName, ok := names[dep]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "    %s --> %s\n", depName, names[id])
		}
	}

	sb.WriteString("```\n")
	return sb.String()
}

// visualizeDOT creates a Graphviz DOT diagram.
func visualizeDOT(reg *component.Registry, target component.Target, order []component.ID) string {
	var sb strings.Builder

	sb.WriteString("digraph Components {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")

	for _, id := range order {
		rule, _ := reg.Rule(id, target)
		fmt.Fprintf(&sb, "    %q [tooltip=%q];\n", string(id), rule.String())
	}
	sb.WriteString("\n")

	for _, id := range order {
		for _, dep := range reg.Dependencies(id) {
			fmt.Fprintf(&sb, "    %q -> %q;\n", string(dep), string(id))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

type jsonComponent struct {
	ID           string   `json:"id"`
	Order        int      `json:"order"`
	Placement    string   `json:"placement"`
	Dependencies []string `json:"dependencies"`
}

type jsonGraph struct {
	Target          string          `json:"target"`
	Components      []jsonComponent `json:"components"`
	TotalComponents int             `json:"totalComponents"`
}

// visualizeJSON creates a JSON representation of the graph.
func visualizeJSON(reg *component.Registry, target component.Target, order []component.ID) (string, error) {
	g := jsonGraph{Target: string(target), TotalComponents: len(order)}
	for i, id := range order {
		rule, _ := reg.Rule(id, target)
		deps := make([]string, 0)
		for _, dep := range reg.Dependencies(id) {
			deps = append(deps, string(dep))
		}
		g.Components = append(g.Components, jsonComponent{
			ID:           string(id),
			Order:        i + 1,
			Placement:    rule.String(),
			Dependencies: deps,
		})
	}
	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode graph: %w", err)
	}
	return string(out) + "\n", nil
}

func joinIDs(ids []component.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

// GetSupportedFormats returns a list of supported visualization formats.
func GetSupportedFormats() []VisualizationFormat {
	return []VisualizationFormat{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// GetFormatDescription returns a description of a visualization format.
func GetFormatDescription(format VisualizationFormat) string {
	descriptions := map[VisualizationFormat]string{
		FormatText:    "Human-readable text with ASCII art",
		FormatMermaid: "Mermaid diagram (for GitHub, GitLab, etc.)",
		FormatDOT:     "Graphviz DOT format (render with `dot -Tpng graph.dot -o graph.png`)",
		FormatJSON:    "Structured JSON representation",
	}
	return descriptions[format]
}
