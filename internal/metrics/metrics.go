// Package metrics instruments the synchronization dispatch loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the dispatcher. A nil *Metrics
// is valid everywhere and records nothing.
type Metrics struct {
	IntentsTotal  *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	StaleTotal    *prometheus.CounterVec
	CallDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		IntentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendsync",
			Name:      "intents_total",
			Help:      "Intents dispatched, by resource and operation.",
		}, []string{"resource", "operation"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendsync",
			Name:      "failures_total",
			Help:      "Intents that ended in a failure transition.",
		}, []string{"resource", "operation"}),
		StaleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spendsync",
			Name:      "stale_completions_total",
			Help:      "Fetch completions dropped because a newer fetch was issued.",
		}, []string{"resource"}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spendsync",
			Name:      "api_call_duration_seconds",
			Help:      "Duration of remote API calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "operation"}),
	}
	reg.MustRegister(m.IntentsTotal, m.FailuresTotal, m.StaleTotal, m.CallDuration)
	return m
}

func (m *Metrics) Intent(resource, operation string) {
	if m == nil {
		return
	}
	m.IntentsTotal.WithLabelValues(resource, operation).Inc()
}

func (m *Metrics) Failure(resource, operation string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(resource, operation).Inc()
}

func (m *Metrics) Stale(resource string) {
	if m == nil {
		return
	}
	m.StaleTotal.WithLabelValues(resource).Inc()
}

func (m *Metrics) ObserveCall(resource, operation string, seconds float64) {
	if m == nil {
		return
	}
	m.CallDuration.WithLabelValues(resource, operation).Observe(seconds)
}
