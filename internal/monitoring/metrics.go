// File: backend/internal/monitoring/metrics.go
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments of the checker. A nil *Metrics is
// valid everywhere and records nothing, so callers never have to guard.
type Metrics struct {
	urlsChecked    *prometheus.CounterVec
	probeAttempts  *prometheus.CounterVec
	batchDuration  prometheus.Histogram
	checksInFlight prometheus.Gauge
}

// New registers the checker instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		urlsChecked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusflow_urls_checked_total",
			Help: "URLs checked, partitioned by result group.",
		}, []string{"group"}),
		probeAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "statusflow_probe_attempts_total",
			Help: "Probe attempts, partitioned by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "statusflow_batch_duration_seconds",
			Help:    "Wall-clock duration of completed batches.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		checksInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "statusflow_checks_in_flight",
			Help: "Number of URL checks currently executing.",
		}),
	}
}

func (m *Metrics) CountResult(group string) {
	if m == nil {
		return
	}
	m.urlsChecked.WithLabelValues(group).Inc()
}

func (m *Metrics) ObserveProbeAttempt(strategy, outcome string) {
	if m == nil {
		return
	}
	m.probeAttempts.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveBatch(seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
}

func (m *Metrics) AddChecksInFlight(delta float64) {
	if m == nil {
		return
	}
	m.checksInFlight.Add(delta)
}
