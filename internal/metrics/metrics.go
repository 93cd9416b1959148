// Package metrics exposes Prometheus counters for negotiations, transfers and policy decisions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Transitions counts applied state machine actions by entity, action and resulting state.
	Transitions *prometheus.CounterVec

	// Decisions counts policy evaluations by policy and outcome.
	Decisions *prometheus.CounterVec

	// Errors counts failed operations by operation and error code.
	Errors *prometheus.CounterVec

	// OperationDuration tracks how long connector operations take.
	OperationDuration *prometheus.HistogramVec

	// Resets counts registry resets.
	Resets prometheus.Counter
}

// New registers the connector metrics on reg.
// A nil reg registers on a private registry so callers without metrics need no special casing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		Transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vertrag_transitions_total",
			Help: "Total number of applied state machine actions.",
		}, []string{"entity", "action", "state"}),

		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vertrag_policy_decisions_total",
			Help: "Total number of policy evaluations by outcome.",
		}, []string{"policy_id", "allowed"}),

		Errors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "vertrag_errors_total",
			Help: "Total number of failed operations by error code.",
		}, []string{"operation", "code"}),

		OperationDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vertrag_operation_duration_seconds",
			Help:    "Histogram of connector operation latencies.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		Resets: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "vertrag_registry_resets_total",
			Help: "Total number of registry resets.",
		}),
	}
}

// ObserveSince records the duration of operation started at start.
func (m *Metrics) ObserveSince(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
