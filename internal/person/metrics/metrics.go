package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the identity reconciliation path.
// Tracks resolution outcomes per mode and end-to-end resolution latency
// including every fallback attempt.
type Metrics struct {
	Resolutions     *prometheus.CounterVec
	ResolveDuration prometheus.Histogram
	SnapshotMisses  prometheus.Counter
}

// New creates a new Metrics instance with all identity metrics registered.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "basketball_identity_resolutions_total",
			Help: "Identity resolutions by mode and outcome",
		}, []string{"mode", "outcome"}),
		ResolveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "basketball_identity_resolve_duration_seconds",
			Help:    "Duration of identity resolution including fallback attempts",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SnapshotMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "basketball_person_snapshot_misses_total",
			Help: "Person snapshot fetches that degraded to a null snapshot",
		}),
	}
}

// ObserveResolution records one resolution attempt.
// Call with time.Now() from the start of the resolution.
func (m *Metrics) ObserveResolution(mode, outcome string, start time.Time) {
	m.Resolutions.WithLabelValues(mode, outcome).Inc()
	m.ResolveDuration.Observe(time.Since(start).Seconds())
}

// IncrementSnapshotMiss records a best-effort snapshot fetch that failed.
func (m *Metrics) IncrementSnapshotMiss() {
	m.SnapshotMisses.Inc()
}
