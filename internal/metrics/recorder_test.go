package metrics

import (
	"sync"
	"time"
)

// testRecorder counts calls; safe for concurrent use.
type testRecorder struct {
	mu             sync.Mutex
	placements     map[string]int
	warnings       map[string]int
	targetResults  map[string]map[ResultLabel]int
	buildDurations int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		placements:    map[string]int{},
		warnings:      map[string]int{},
		targetResults: map[string]map[ResultLabel]int{},
	}
}

func (t *testRecorder) ObserveTargetDuration(string, time.Duration) {}
func (t *testRecorder) ObserveBuildDuration(time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buildDurations++
}
func (t *testRecorder) IncTargetResult(target string, result ResultLabel) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.targetResults[target]
	if !ok {
		m = map[ResultLabel]int{}
		t.targetResults[target] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(string) {}
func (t *testRecorder) IncPlacement(target, action string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.placements[target+"/"+action]++
}
func (t *testRecorder) IncDependencyMerge(string) {}
func (t *testRecorder) IncWarning(target, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warnings[target+"/"+kind]++
}

var (
	_ Recorder = (*testRecorder)(nil)
	_ Recorder = NoopRecorder{}
	_ Recorder = (*PrometheusRecorder)(nil)
)
