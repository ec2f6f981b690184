package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetricsRecorder forwards operation outcomes to a Prometheus
// registry. Construct at most one recorder per registry; the collectors it
// registers carry fixed names.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder registering its
// collectors with reg. A nil registerer falls back to the process-wide
// default registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetricsRecorder{
		// durations measures service operation latency.
		// Labels: operation (snake_case operation name), status (success, error)
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "traitcore",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		}, []string{"operation", "status"}),
		// results counts service operation outcomes.
		// Labels: operation, status (success, error)
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traitcore",
			Subsystem: "service",
			Name:      "operation_results_total",
			Help:      "Total service operation outcomes",
		}, []string{"operation", "status"}),
	}
}

// Observe implements the MetricsRecorder interface.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation, status).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
