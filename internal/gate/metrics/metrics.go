package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the request gate.
type Metrics struct {
	// Gate outcomes by decision kind
	Decisions *prometheus.CounterVec

	// Full evaluation latency including session and profile lookups
	EvaluateLatency prometheus.Histogram

	// Requests that bypassed evaluation entirely
	Bypassed *prometheus.CounterVec
}

// New creates a Metrics instance with all gate metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soko_gate_decisions_total",
			Help: "Total gate decisions by kind",
		}, []string{"kind"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "soko_gate_evaluate_duration_seconds",
			Help:    "Duration of full gate evaluation including session and profile lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		Bypassed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "soko_gate_bypassed_total",
			Help: "Requests that skipped gate evaluation, by reason",
		}, []string{"reason"}), // reason: "static", "api", "prefetch", "rewrite"
	}
}

// IncrementDecision records a gate outcome.
func (m *Metrics) IncrementDecision(kind string) {
	if m != nil {
		m.Decisions.WithLabelValues(kind).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementBypassed records a request that skipped evaluation.
func (m *Metrics) IncrementBypassed(reason string) {
	if m != nil {
		m.Bypassed.WithLabelValues(reason).Inc()
	}
}
