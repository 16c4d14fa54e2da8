// Package metrics records Prometheus metrics for generation calls and
// pipeline stages, and provides a query service for aggregating them from a
// Prometheus server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // promauto collectors are process-global by design
var (
	generationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Total generation calls by model, role and outcome.",
	}, []string{"model", "role", "status"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "generation_request_duration_seconds",
		Help:    "Latency of generation calls by model.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"model"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pipeline_stage_duration_seconds",
		Help:    "Wall time of each pipeline stage.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"stage"})
)

// Request outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordGenerationRequest counts one generation call.
func RecordGenerationRequest(model, role, status string) {
	generationRequests.WithLabelValues(model, role, status).Inc()
}

// ObserveGenerationDuration records the latency of one generation call.
func ObserveGenerationDuration(model string, d time.Duration) {
	generationDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveStageDuration records the wall time of one pipeline stage.
func ObserveStageDuration(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
