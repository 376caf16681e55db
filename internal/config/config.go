package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
)

// SupportedVersion is the only accepted value of the version field.
const SupportedVersion = "1.0"

// Config is a pipemerge project file.
type Config struct {
	Version string `yaml:"version"`
	// Catalog is the path of a YAML component catalog.
	Catalog string `yaml:"catalog,omitempty"`
	// ComponentsCatalog declares components inline, in addition to Catalog.
	ComponentsCatalog []component.CatalogEntry `yaml:"components_catalog,omitempty"`
	Templates         TemplatesConfig          `yaml:"templates"`
	Components        []ComponentConfig        `yaml:"components"`
	Fields            map[string]string        `yaml:"fields,omitempty"`
	Build             BuildConfig              `yaml:"build"`
	Output            OutputConfig             `yaml:"output"`
	Monitoring        *MonitoringConfig        `yaml:"monitoring,omitempty"`

	// path is the file the configuration was loaded from.
	path string
}

// TemplatesConfig holds the base pipeline template per target. A target
// without a template is not built.
type TemplatesConfig struct {
	Reference  string `yaml:"reference,omitempty"`
	Conceptual string `yaml:"conceptual,omitempty"`
}

// ComponentConfig is one user-declared component configuration.
type ComponentConfig struct {
	ID            string `yaml:"id"`
	Enabled       *bool  `yaml:"enabled,omitempty"`
	Configuration string `yaml:"configuration,omitempty"`
}

// IsEnabled reports whether the component is enabled. Components are
// enabled unless they say otherwise.
func (c ComponentConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// BuildConfig controls merging.
type BuildConfig struct {
	// HelpFormat is the active output format of pipelines without a
	// multi-format container.
	HelpFormat string `yaml:"help_format"`
	// ContainerID is the id of the multi-format container component.
	ContainerID     string `yaml:"container_id"`
	ParallelTargets bool   `yaml:"parallel_targets"`
	// MaxSubstitutionPasses fixes the field substitution pass ceiling; zero
	// derives it from the text length.
	MaxSubstitutionPasses int `yaml:"max_substitution_passes,omitempty"`
	// MaxExpandedLength bounds the size of a configuration text after field
	// substitution; zero keeps the built-in limit.
	MaxExpandedLength int `yaml:"max_expanded_length,omitempty"`
}

// Substitution returns the field substitution options of the build.
func (b BuildConfig) Substitution() []fields.Option {
	return []fields.Option{
		fields.WithMaxPasses(b.MaxSubstitutionPasses),
		fields.WithMaxLength(b.MaxExpandedLength),
	}
}

// OutputConfig controls where merged pipelines are written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	DryRun    bool   `yaml:"dry_run"`
	// Report writes a merge report next to the outputs: none, markdown or html.
	Report ReportFormat `yaml:"report,omitempty"`
}

// MonitoringConfig represents logging and metrics configuration.
type MonitoringConfig struct {
	Logging MonitoringLogging `yaml:"logging"`
	Metrics MonitoringMetrics `yaml:"metrics"`
}

// MonitoringLogging represents logging configuration.
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool `yaml:"enabled"`
	// Textfile is where metrics are written after each run.
	Textfile string `yaml:"textfile,omitempty"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFile(filepath.Dir(configPath))

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.NotFoundError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.path = configPath
	return cfg, nil
}

// Parse expands ${VAR} references in data and decodes it.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}

	if cfg.Version != SupportedVersion {
		return nil, errors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, SupportedVersion)).Build()
	}

	applyDefaults(&cfg)
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string { return c.path }

// Resolve returns p relative to the configuration file's directory.
// Absolute paths and configurations not loaded from a file are returned
// unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.path), p)
}

// Template returns the base template path of target, resolved against the
// configuration directory.
func (c *Config) Template(target component.Target) string {
	switch target {
	case component.TargetReference:
		return c.Resolve(c.Templates.Reference)
	case component.TargetConceptual:
		return c.Resolve(c.Templates.Conceptual)
	default:
		return ""
	}
}

// Targets returns the targets that have a template, in canonical order.
func (c *Config) Targets() []component.Target {
	var out []component.Target
	for _, t := range component.Targets {
		if c.Template(t) != "" {
			out = append(out, t)
		}
	}
	return out
}

// Registry builds the component registry from the catalog file and the
// inline catalog.
func (c *Config) Registry() (*component.Registry, error) {
	catalog := &component.Catalog{}
	if c.Catalog != "" {
		loaded, err := component.LoadCatalog(c.Resolve(c.Catalog))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load component catalog").
				WithContext("path", c.Resolve(c.Catalog)).
				Build()
		}
		catalog = loaded
	}
	inline := &component.Catalog{Components: c.ComponentsCatalog}
	extra, err := inline.Descriptors()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid components_catalog entry").Build()
	}
	reg, err := catalog.Registry(extra...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid component catalog").Build()
	}
	return reg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	enabled := true
	example := Config{
		Version: SupportedVersion,
		Catalog: "components.yaml",
		ComponentsCatalog: []component.CatalogEntry{
			{
				ID:          "Version Information",
				Description: "Adds assembly version information to topics",
				Placement: component.CatalogPlacementSet{
					Reference:  component.CatalogPlacement{Action: "after", Anchor: "Resolve Reference Links", Instance: 1},
					Conceptual: component.CatalogPlacement{Action: "none"},
				},
				Configuration: `<versionInfo assemblyVersion="{@AssemblyVersion}" />`,
			},
		},
		Templates: TemplatesConfig{
			Reference:  "templates/reference.config",
			Conceptual: "templates/conceptual.config",
		},
		Components: []ComponentConfig{
			{
				ID:            "Version Information",
				Enabled:       &enabled,
				Configuration: `<versionInfo assemblyVersion="{@AssemblyVersion}" fileVersion="{@FileVersion}" />`,
			},
		},
		Fields: map[string]string{
			"AssemblyVersion": "${ASSEMBLY_VERSION}",
			"FileVersion":     "{@AssemblyVersion}",
		},
		Build: BuildConfig{
			HelpFormat:  "Website",
			ContainerID: DefaultContainerID,
		},
		Output: OutputConfig{Directory: "./out", Report: ReportMarkdown},
		Monitoring: &MonitoringConfig{
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.InternalError("failed to marshal config").WithCause(err).Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
