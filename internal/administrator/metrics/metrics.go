// Package metrics exposes Prometheus collectors for administrator
// operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks administrator registration outcomes and latency.
type Metrics struct {
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers the administrator collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basketball_administrator_operations_total",
				Help: "Administrator operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "basketball_administrator_operation_duration_seconds",
				Help:    "Duration of administrator operations, including upstream identity calls.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
	}
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(operation, outcome string, start time.Time) {
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
