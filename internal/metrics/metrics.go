// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from a catalog run.
//
// It exposes a narrow interface (Backend) focused on counters and timing
// data, and a global pluggable backend that defaults to a no-op so metrics
// are always safe to call. Concrete systems live in subpackages (prompush,
// datadog) and the rest of the code depends only on this package.
//
// Metric names:
//
//	catalog_stage_total            counter   job, stage, status
//	catalog_stage_duration_seconds histogram job, stage, status
//	catalog_rows_total             counter   job, kind
//	catalog_events_total           counter   job, stage, kind
package metrics

import (
	"sync"
	"time"
)

// Metric names shared with the backends.
const (
	StageTotal    = "catalog_stage_total"
	StageDuration = "catalog_stage_duration_seconds"
	RowsTotal     = "catalog_rows_total"
	EventsTotal   = "catalog_events_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

// Reset restores the no-op backend.
func Reset() {
	mu.Lock()
	backend = nopBackend{}
	mu.Unlock()
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStage measures latency and success/failure of one pipeline stage.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	b := current()
	b.IncCounter(StageTotal, 1, lbls)
	b.ObserveHistogram(StageDuration, d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Kinds used by the pipeline:
//   - "extracted"
//   - "skipped"
//   - "written"
//   - "loaded"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordEvent counts a diagnostic raised by a stage (dropped columns,
// duplicate rows, placeholders, ...). delta is the number of affected items.
func RecordEvent(job, stage, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(EventsTotal, float64(delta), Labels{
		"job":   job,
		"stage": stage,
		"kind":  kind,
	})
}
