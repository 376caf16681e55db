package config

// DefaultContainerID is the id of the multi-format container component.
const DefaultContainerID = "Multi-format Output Component"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config)
}

// BuildDefaultApplier handles build defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Build.ContainerID == "" {
		cfg.Build.ContainerID = DefaultContainerID
	}
	if cfg.Build.HelpFormat == "" {
		cfg.Build.HelpFormat = "Website"
	}
}

// OutputDefaultApplier handles output defaults.
type OutputDefaultApplier struct{}

func (OutputDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = "./out"
	}
	if r, err := ParseReportFormat(string(cfg.Output.Report)); err == nil {
		cfg.Output.Report = r
	}
}

// MonitoringDefaultApplier normalizes logging settings. Unknown values are
// kept for the validator to report.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Monitoring == nil {
		cfg.Monitoring = &MonitoringConfig{}
	}
	logging := &cfg.Monitoring.Logging
	if level, err := ParseLogLevel(string(logging.Level)); err == nil {
		logging.Level = level
	}
	if format, err := ParseLogFormat(string(logging.Format)); err == nil {
		logging.Format = format
	}
}

// ComponentsDefaultApplier handles component request defaults.
type ComponentsDefaultApplier struct{}

func (ComponentsDefaultApplier) ApplyDefaults(cfg *Config) {
	if cfg.Fields == nil {
		cfg.Fields = map[string]string{}
	}
}

var defaultAppliers = []DefaultApplier{
	BuildDefaultApplier{},
	OutputDefaultApplier{},
	MonitoringDefaultApplier{},
	ComponentsDefaultApplier{},
}

// applyDefaults applies default values to configuration.
func applyDefaults(cfg *Config) {
	for _, a := range defaultAppliers {
		a.ApplyDefaults(cfg)
	}
}
