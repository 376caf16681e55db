package config

import (
	"fmt"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/foundation"
)

// ValidateConfig validates the configuration structure. Catalog content is
// validated when the registry is built.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg, result: foundation.Valid()}
	v.validateTemplates()
	v.validateComponents()
	v.validateBuild()
	v.validateOutput()
	v.validateMonitoring()
	return v.result.ToError()
}

// configurationValidator collects validation failures across domains.
type configurationValidator struct {
	config *Config
	result foundation.ValidationResult
}

func (cv *configurationValidator) merge(r foundation.ValidationResult) {
	cv.result = cv.result.Combine(r)
}

func (cv *configurationValidator) validateTemplates() {
	if cv.config.Templates.Reference == "" && cv.config.Templates.Conceptual == "" {
		cv.result.Add("templates", "required", "at least one of reference or conceptual must be set")
	}
}

func (cv *configurationValidator) validateComponents() {
	if cv.config.Catalog == "" && len(cv.config.ComponentsCatalog) == 0 && len(cv.config.Components) > 0 {
		cv.result.Add("catalog", "required", "components are requested but no catalog is configured")
	}
	seen := make(map[string]bool, len(cv.config.Components))
	for i, c := range cv.config.Components {
		field := fmt.Sprintf("components[%d].id", i)
		if _, err := component.ParseID(c.ID); err != nil {
			cv.result.Add(field, "invalid", "%v", err)
			continue
		}
		if seen[c.ID] {
			cv.result.Add(field, "duplicate", "component %q is configured more than once", c.ID)
		}
		seen[c.ID] = true
	}
}

func (cv *configurationValidator) validateBuild() {
	cv.merge(foundation.Required("build.help_format")(cv.config.Build.HelpFormat))
	if _, err := component.ParseID(cv.config.Build.ContainerID); err != nil {
		cv.result.Add("build.container_id", "invalid", "%v", err)
	}
	if cv.config.Build.MaxSubstitutionPasses < 0 {
		cv.result.Add("build.max_substitution_passes", "range", "must not be negative")
	}
	if cv.config.Build.MaxExpandedLength < 0 {
		cv.result.Add("build.max_expanded_length", "range", "must not be negative")
	}
}

func (cv *configurationValidator) validateOutput() {
	if !cv.config.Output.DryRun {
		cv.merge(foundation.Required("output.directory")(cv.config.Output.Directory))
	}
	if _, err := ParseReportFormat(string(cv.config.Output.Report)); err != nil {
		cv.result.Add("output.report", "one_of", "%v", err)
	}
}

func (cv *configurationValidator) validateMonitoring() {
	m := cv.config.Monitoring
	if m == nil {
		return
	}
	level := foundation.NewValidatorChain(
		foundation.Required("monitoring.logging.level"),
		foundation.OneOf("monitoring.logging.level", logLevelNormalizer.ValidKeys()),
	)
	cv.merge(level.Validate(string(m.Logging.Level)))
	cv.merge(foundation.OneOf("monitoring.logging.format", logFormatNormalizer.ValidKeys())(string(m.Logging.Format)))
}
