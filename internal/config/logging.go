package config

import (
	"git.home.luguber.info/inful/pipemerge/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// ParseLogLevel maps raw to a LogLevel. Blank input is info.
func ParseLogLevel(raw string) (LogLevel, error) {
	return logLevelNormalizer.Parse(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw to a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// ParseLogFormat maps raw to a LogFormat. Blank input is text.
func ParseLogFormat(raw string) (LogFormat, error) {
	return logFormatNormalizer.Parse(raw)
}

// ReportFormat selects the merge report written after a run.
type ReportFormat string

const (
	ReportNone     ReportFormat = "none"
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

var reportFormatNormalizer = normalization.NewNormalizer(map[string]ReportFormat{
	"none":     ReportNone,
	"markdown": ReportMarkdown,
	"md":       ReportMarkdown,
	"html":     ReportHTML,
}, ReportNone)

// ParseReportFormat maps raw to a ReportFormat. Blank input is none.
func ParseReportFormat(raw string) (ReportFormat, error) {
	return reportFormatNormalizer.Parse(raw)
}
