package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
)

const projectYAML = `version: "1.0"
templates:
  reference: reference.config
fields:
  Product: pipemerge
components_catalog:
  - id: Branding
    placement:
      reference: {action: after, anchor: Resolve Links, instance: 1}
  - id: Footer
    dependencies: [Branding]
    placement:
      reference: {action: end}
components:
  - id: Footer
    configuration: <footer product="{@Product:upper}" />
output:
  directory: out
  report: markdown
monitoring:
  metrics:
    enabled: true
    textfile: out/pipemerge.prom
`

const referenceXML = `<components>
  <component id="Resolve Links" />
  <component id="Save Pages" />
</components>`

func writeProject(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipemerge.yaml"), []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reference.config"), []byte(referenceXML), 0o644))
	return filepath.Join(dir, "pipemerge.yaml")
}

// run parses args like main does and runs the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cli := &CLI{}
	g := &Global{Stdout: &out}
	parser, err := kong.New(cli, kong.Name("pipemerge"), kong.Bind(g), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	err = ctx.Run(g, cli)
	return out.String(), err
}

func TestMergeCommand(t *testing.T) {
	cfgPath := writeProject(t, projectYAML)
	dir := filepath.Dir(cfgPath)

	out, err := run(t, "-c", cfgPath, "merge")
	require.NoError(t, err)
	assert.Contains(t, out, "reference")
	assert.Contains(t, out, "status=success")

	merged, err := os.ReadFile(filepath.Join(dir, "out", "reference.config"))
	require.NoError(t, err)
	text := string(merged)
	assert.Less(t, strings.Index(text, `"Resolve Links"`), strings.Index(text, `"Branding"`))
	assert.Less(t, strings.Index(text, `"Save Pages"`), strings.Index(text, `"Footer"`))
	assert.Contains(t, text, `<footer product="PIPEMERGE" />`)

	assert.FileExists(t, filepath.Join(dir, "out", "merge-report.md"))
	prom, err := os.ReadFile(filepath.Join(dir, "out", "pipemerge.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "pipemerge_dependency_merges_total")
}

func TestMergeCommand_IsDefault(t *testing.T) {
	cfgPath := writeProject(t, projectYAML)
	_, err := run(t, "-c", cfgPath, "--dry-run")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(cfgPath), "out", "reference.config"))
}

func TestMergeCommand_RejectsBadFlags(t *testing.T) {
	cfgPath := writeProject(t, projectYAML)

	_, err := run(t, "-c", cfgPath, "merge", "--target", "tutorial")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = run(t, "-c", cfgPath, "merge", "--report", "pdf")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestMergeCommand_MissingConfig(t *testing.T) {
	_, err := run(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"), "merge")
	require.Error(t, err)
	assert.Equal(t, 3, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "-c", writeProject(t, projectYAML), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestValidateCommand_ReportsEveryProblem(t *testing.T) {
	broken := strings.Replace(projectYAML, "  - id: Branding\n    placement:",
		"  - id: Branding\n    dependencies: [Footer, Ghost]\n    placement:", 1)
	broken = strings.Replace(broken, "components:\n  - id: Footer\n", "components:\n  - id: Footer\n  - id: Nobody\n", 1)

	out, err := run(t, "-c", writeProject(t, broken), "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Configuration is invalid")
	assert.Contains(t, out, "circular dependency")
	assert.Contains(t, out, "Ghost")
	assert.Contains(t, out, `"Nobody"`)
	assert.True(t, errors.HasCategory(err, errors.CategoryDependency))
}

func TestVisualizeCommand(t *testing.T) {
	cfgPath := writeProject(t, projectYAML)

	out, err := run(t, "-c", cfgPath, "visualize", "-f", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "graph")
	assert.Contains(t, out, `"Footer"`)

	file := filepath.Join(t.TempDir(), "graph.dot")
	_, err = run(t, "-c", cfgPath, "visualize", "-f", "dot", "-o", file)
	require.NoError(t, err)
	assert.FileExists(t, file)

	out, err = run(t, "visualize", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "mermaid")
}

func TestResolveFieldsCommand(t *testing.T) {
	cfgPath := writeProject(t, projectYAML)

	out, err := run(t, "-c", cfgPath, "resolve-fields", "{@Product:upper}", "for", "{@Target}")
	require.NoError(t, err)
	assert.Equal(t, "PIPEMERGE for reference\n", out)

	out, err = run(t, "-c", cfgPath, "resolve-fields", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "HelpFormat\n")
	assert.Contains(t, out, "Product\n")

	_, err = run(t, "-c", cfgPath, "resolve-fields", "{@Missing}")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "init", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "initialized successfully")
	assert.FileExists(t, filepath.Join(dir, "pipemerge.yaml"))

	_, err = run(t, "init", "-o", dir)
	require.Error(t, err)

	_, err = run(t, "init", "-o", dir, "--force")
	require.NoError(t, err)
}

func TestWatchedFiles(t *testing.T) {
	cfgPath := writeProject(t, projectYAML+"catalog: catalog.yaml\n")
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(cfgPath), "catalog.yaml"), []byte("components: []\n"), 0o644))

	out := &bytes.Buffer{}
	g := &Global{Stdout: out}
	require.NoError(t, (&CLI{}).AfterApply(g))
	cfg, err := loadConfig(g, &CLI{Config: cfgPath})
	require.NoError(t, err)

	dir := filepath.Dir(cfgPath)
	assert.Equal(t, []string{
		cfgPath,
		filepath.Join(dir, "catalog.yaml"),
		filepath.Join(dir, "reference.config"),
	}, watchedFiles(cfg))
}
