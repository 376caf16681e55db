package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"git.home.luguber.info/inful/pipemerge/internal/build"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
)

// Format selects the persisted representation.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Report is a rendered view of a build.Result.
type Report struct {
	result *build.Result
}

// New wraps result.
func New(result *build.Result) *Report { return &Report{result: result} }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	res := r.result
	return fmt.Sprintf("run=%s status=%s targets=%d warnings=%d duration=%s dry_run=%t",
		res.RunID, res.Status, len(res.Targets), len(res.Warnings()),
		res.Duration.Truncate(time.Millisecond), res.DryRun)
}

// Markdown renders the report.
func (r *Report) Markdown() []byte {
	res := r.result
	var b strings.Builder

	b.WriteString("# Merge report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", res.RunID)
	fmt.Fprintf(&b, "- Status: **%s**\n", res.Status)
	fmt.Fprintf(&b, "- Started: %s\n", res.StartTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Duration: %s\n", res.Duration.Truncate(time.Millisecond))
	switch {
	case res.DryRun:
		b.WriteString("- Dry run: outputs were not written\n")
	case !res.Status.IsSuccess():
		b.WriteString("- Run did not complete: outputs were not written\n")
	}
	b.WriteString("\n")

	if len(res.Targets) == 0 {
		return []byte(b.String())
	}

	b.WriteString("| Target | Status | Requests | Warnings | Duration | Output |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, t := range res.Targets {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s | %s |\n",
			t.Target, t.Status, t.Requests, len(t.Warnings),
			t.Duration.Truncate(time.Millisecond), cell(t.OutputPath))
	}

	for _, t := range res.Targets {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Target)
		if t.Template != "" {
			fmt.Fprintf(&b, "Template: `%s`\n\n", t.Template)
		}
		if t.Err != nil {
			fmt.Fprintf(&b, "**Error:** %s\n\n", t.Err)
		}
		if t.Document != nil {
			b.WriteString("### Pipeline\n\n")
			writeSequence(&b, t.Document, t.Document.Root, "")
			b.WriteString("\n")
		}
		if len(t.Warnings) > 0 {
			b.WriteString("### Warnings\n\n")
			b.WriteString("| Kind | Component | Format | Anchor | Message |\n")
			b.WriteString("|---|---|---|---|---|\n")
			for _, w := range t.Warnings {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
					w.Kind, cell(string(w.Component)), cell(w.Format), cell(string(w.Anchor)), cell(w.Message))
			}
		}
	}
	return []byte(b.String())
}

func writeSequence(b *strings.Builder, doc *pipeline.Document, seq *pipeline.Sequence, indent string) {
	for i, n := range seq.Nodes() {
		fmt.Fprintf(b, "%s%d. `%s`\n", indent, i+1, n.ID)
		if !n.IsContainer() || doc.Container == nil {
			continue
		}
		for _, br := range doc.Container.Branches() {
			fmt.Fprintf(b, "%s   - %s\n", indent, br.Format)
			writeSequence(b, doc, br.Seq, indent+"     ")
		}
	}
}

// cell escapes a value for a Markdown table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// HTML renders the Markdown report to a standalone HTML page.
func (r *Report) HTML() ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert(r.Markdown(), &body); err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&out, "<title>Merge report %s</title>\n", r.result.RunID)
	out.WriteString("</head>\n<body>\n")
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

// FileName returns the report file name for format.
func FileName(format Format) string {
	if format == FormatHTML {
		return "merge-report.html"
	}
	return "merge-report.md"
}

// Persist writes the report in format into dir atomically and returns the
// written path.
func (r *Report) Persist(dir string, format Format) (string, error) {
	var data []byte
	switch format {
	case FormatMarkdown:
		data = r.Markdown()
	case FormatHTML:
		var err error
		if data, err = r.HTML(); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported report format %q", format)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure report directory: %w", err)
	}
	path := filepath.Join(dir, FileName(format))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write temp report: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("atomic rename report: %w", err)
	}
	return path, nil
}
