package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"catalogetl/internal/config"
	"catalogetl/internal/metrics"
	"catalogetl/internal/metrics/datadog"
	"catalogetl/internal/metrics/prompush"
)

// InstallMetrics selects the global metrics backend from m. The returned
// function flushes and restores the no-op backend; call it once the run is
// over. A backend that cannot be built leaves metrics disabled and is
// reported as an error.
func InstallMetrics(log *zap.Logger, m config.Metrics, runID string) (func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	job := m.Job
	if job == "" {
		job = config.DefaultJob
	}

	var b metrics.Backend
	switch m.Backend {
	case "", "none":
		log.Debug("metrics disabled")
		return func() {}, nil
	case "pushgateway", "prometheus":
		pb, err := prompush.NewBackend(job, m.PushgatewayURL)
		if err != nil {
			return func() {}, fmt.Errorf("metrics: pushgateway: %w", err)
		}
		b = pb
	case "datadog", "dogstatsd":
		db, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DogStatsDAddr,
			GlobalTags: []string{"job:" + job, "run_id:" + runID},
		})
		if err != nil {
			return func() {}, fmt.Errorf("metrics: datadog: %w", err)
		}
		b = db
	default:
		return func() {}, fmt.Errorf("metrics: unknown backend %q", m.Backend)
	}

	metrics.SetBackend(b)
	log.Info("metrics enabled", zap.String("backend", m.Backend), zap.String("job", job))
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", zap.Error(err))
		}
		metrics.Reset()
	}, nil
}
