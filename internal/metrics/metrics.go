package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/awmpietro/entry-decision-engine/internal/decision"
)

// Metrics provides observability for batch decisions.
type Metrics struct {
	// Decisions by outcome
	Decisions *prometheus.CounterVec

	// Per rule evaluation latency
	RuleLatency *prometheus.HistogramVec

	// Whole batch latency, index build included
	BatchLatency prometheus.Histogram
}

// New registers the decision metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "entry_decisions_total",
			Help: "Total entry decisions by outcome",
		}, []string{"decision"}),

		RuleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "entry_rule_duration_seconds",
			Help:    "Duration of a single rule evaluation",
			Buckets: []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001},
		}, []string{"rule"}),

		BatchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "entry_batch_duration_seconds",
			Help:    "Duration of a full batch decision",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRuleLatency satisfies decision.RuleLatencyObserver.
func (m *Metrics) ObserveRuleLatency(rule string, d time.Duration) {
	if m != nil {
		m.RuleLatency.WithLabelValues(rule).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementDecision(d decision.Decision) {
	if m != nil {
		m.Decisions.WithLabelValues(string(d)).Inc()
	}
}

func (m *Metrics) ObserveBatchLatency(d time.Duration) {
	if m != nil {
		m.BatchLatency.Observe(d.Seconds())
	}
}
