// Package metrics exposes Prometheus collectors for the enrollment path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks enrollment operations, how athlete rows were obtained and
// how often the path ran degraded on a synthetic reference.
type Metrics struct {
	Operations        *prometheus.CounterVec
	Enrollments       *prometheus.CounterVec
	Degraded          prometheus.Counter
	OperationDuration *prometheus.HistogramVec
}

// New registers the enrollment collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		Operations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basketball_enrollment_operations_total",
				Help: "Enrollment operations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		Enrollments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "basketball_enrollments_total",
				Help: "Successful enrollments by how the athlete row was obtained (created or reused).",
			},
			[]string{"athlete"},
		),
		Degraded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "basketball_enrollment_degraded_total",
				Help: "Enrollments that proceeded on a synthetic reference because the user module was degraded.",
			},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "basketball_enrollment_operation_duration_seconds",
				Help:    "Duration of enrollment operations, including upstream identity calls.",
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

// IncrementEnrollment counts one successful enrollment.
func (m *Metrics) IncrementEnrollment(athleteOutcome string) {
	m.Enrollments.WithLabelValues(athleteOutcome).Inc()
}

// IncrementDegraded counts one synthetic-reference enrollment.
func (m *Metrics) IncrementDegraded() {
	m.Degraded.Inc()
}
