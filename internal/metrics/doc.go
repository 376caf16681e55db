// Package metrics provides observability hooks for merge runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	engine := merge.New(reg, target, doc, merge.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder registers the collectors on a caller-supplied registry.
// A command-line run has no scrape endpoint, so WriteTextfile exports the
// registry in the text exposition format for node_exporter's textfile
// collector.
package metrics
