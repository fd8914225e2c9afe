// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A catalog run is a batch job with no long-lived HTTP server, so instead of
// exposing a scrape endpoint the collected registry is pushed to a
// Pushgateway when the run flushes metrics.
package prompush

import (
	"fmt"

	"catalogetl/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stageCounter  *prometheus.CounterVec // catalog_stage_total
	stageDuration *prometheus.SummaryVec // catalog_stage_duration_seconds
	rowCounter    *prometheus.CounterVec // catalog_rows_total
	eventCounter  *prometheus.CounterVec // catalog_events_total
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" name.
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "catalogetl"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so it is not repeated as a label.
	stageCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StageTotal,
			Help: "Total number of pipeline stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StageDuration,
			Help:       "Duration of pipeline stages in seconds, partitioned by stage and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row-level counts per kind (extracted, skipped, written, loaded).",
		},
		[]string{"kind"},
	)
	eventCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.EventsTotal,
			Help: "Diagnostics raised by pipeline stages, partitioned by stage and kind.",
		},
		[]string{"stage", "kind"},
	)

	for name, c := range map[string]prometheus.Collector{
		"stage counter": stageCounter,
		"stage summary": stageDuration,
		"row counter":   rowCounter,
		"event counter": eventCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stageCounter:  stageCounter,
		stageDuration: stageDuration,
		rowCounter:    rowCounter,
		eventCounter:  eventCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StageTotal:
		if b.stageCounter == nil {
			return
		}
		b.stageCounter.WithLabelValues(labels["stage"], labels["status"]).Add(delta)

	case metrics.RowsTotal:
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.EventsTotal:
		if b.eventCounter == nil {
			return
		}
		b.eventCounter.WithLabelValues(labels["stage"], labels["kind"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StageDuration || b.stageDuration == nil {
		return
	}
	b.stageDuration.WithLabelValues(labels["stage"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
