package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/merge"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
)

// Service executes merge runs.
type Service interface {
	// Run merges every configured target. The returned Result is non-nil
	// even when err is not.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request contains all inputs required to execute a run.
type Request struct {
	// Config is the loaded project configuration.
	Config *config.Config

	Options Options
}

// Options provides optional run behavior modifiers.
type Options struct {
	// DryRun merges without writing outputs. It is combined with the
	// configuration's output.dry_run.
	DryRun bool

	// OutputDir overrides output.directory when set.
	OutputDir string

	// Targets restricts the run to these targets. Empty means every target
	// that has a template.
	Targets []component.Target
}

// Result contains the outcome of a run.
type Result struct {
	RunID     string
	Status    Status
	Targets   []TargetResult
	OutputDir string
	DryRun    bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Warnings returns the warnings of every target in target order.
func (r *Result) Warnings() []merge.Warning {
	var out []merge.Warning
	for _, t := range r.Targets {
		out = append(out, t.Warnings...)
	}
	return out
}

// TargetResult is the outcome for one target.
type TargetResult struct {
	Target   component.Target
	Status   Status
	Template string
	// Document is the merged pipeline. It is nil when the template could
	// not be loaded.
	Document *pipeline.Document
	// Output is the serialized document of a successful merge.
	Output     []byte
	OutputPath string
	Requests   int
	Warnings   []merge.Warning
	Duration   time.Duration
	Err        error
}

// Status represents the outcome of a run or target.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusWarning   Status = "warning"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// IsSuccess reports whether outputs were produced.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess || s == StatusWarning
}
