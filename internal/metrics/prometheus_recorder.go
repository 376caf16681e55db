package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	targetDuration   *prom.HistogramVec
	buildDuration    prom.Histogram
	targetResults    *prom.CounterVec
	buildOutcome     *prom.CounterVec
	placements       *prom.CounterVec
	dependencyMerges *prom.CounterVec
	warnings         *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		targetDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "pipemerge",
			Name:      "target_duration_seconds",
			Help:      "Duration of merging one target pipeline",
			Buckets:   prom.DefBuckets,
		}, []string{"target"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pipemerge",
			Name:      "build_duration_seconds",
			Help:      "Total run duration",
			Buckets:   prom.DefBuckets,
		}),
		targetResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pipemerge",
			Name:      "target_results_total",
			Help:      "Target result counts by outcome",
		}, []string{"target", "result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pipemerge",
			Name:      "build_outcomes_total",
			Help:      "Run outcomes by final status",
		}, []string{"outcome"}),
		placements: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pipemerge",
			Name:      "placements_total",
			Help:      "Component nodes written by placement action",
		}, []string{"target", "action"}),
		dependencyMerges: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pipemerge",
			Name:      "dependency_merges_total",
			Help:      "Components merged to satisfy a dependency",
		}, []string{"target"}),
		warnings: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "pipemerge",
			Name:      "warnings_total",
			Help:      "Recoverable merge warnings by kind",
		}, []string{"target", "kind"}),
	}
	reg.MustRegister(pr.targetDuration, pr.buildDuration, pr.targetResults, pr.buildOutcome,
		pr.placements, pr.dependencyMerges, pr.warnings)
	return pr
}

func (p *PrometheusRecorder) ObserveTargetDuration(target string, d time.Duration) {
	if p == nil || p.targetDuration == nil {
		return
	}
	p.targetDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTargetResult(target string, result ResultLabel) {
	if p == nil || p.targetResults == nil {
		return
	}
	p.targetResults.WithLabelValues(target, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncPlacement(target, action string) {
	if p == nil || p.placements == nil {
		return
	}
	p.placements.WithLabelValues(target, action).Inc()
}

func (p *PrometheusRecorder) IncDependencyMerge(target string) {
	if p == nil || p.dependencyMerges == nil {
		return
	}
	p.dependencyMerges.WithLabelValues(target).Inc()
}

func (p *PrometheusRecorder) IncWarning(target, kind string) {
	if p == nil || p.warnings == nil {
		return
	}
	p.warnings.WithLabelValues(target, kind).Inc()
}

// WriteTextfile writes every metric gathered from reg to path in the text
// exposition format.
func WriteTextfile(reg *prom.Registry, path string) error {
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
