package metrics

import "time"

// ResultLabel enumerates per-target result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for runs, targets and individual
// merges. Implementations must be safe for concurrent use because targets
// may be merged in parallel.
type Recorder interface {
	ObserveTargetDuration(target string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncTargetResult(target string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|cancelled
	// IncPlacement counts a node written by action (start, end, before,
	// after, replace, override or none).
	IncPlacement(target, action string)
	IncDependencyMerge(target string)
	IncWarning(target, kind string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTargetDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)          {}
func (NoopRecorder) IncTargetResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                      {}
func (NoopRecorder) IncPlacement(string, string)                 {}
func (NoopRecorder) IncDependencyMerge(string)                   {}
func (NoopRecorder) IncWarning(string, string)                   {}
