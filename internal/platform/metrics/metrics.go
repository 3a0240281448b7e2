package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbound HTTP transport.
type Metrics struct {
	BreakerTransitions *prometheus.CounterVec
	BreakerRejections  *prometheus.CounterVec
}

// New creates and registers transport metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates transport metrics registered with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BreakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbt_circuit_breaker_transitions_total",
			Help: "Circuit breaker state changes by breaker and new state",
		}, []string{"breaker", "state"}),
		BreakerRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "arbt_circuit_breaker_rejections_total",
			Help: "Requests rejected because the circuit was open",
		}, []string{"breaker"}),
	}
}

// RecordTransition counts a breaker moving to state.
func (m *Metrics) RecordTransition(breaker, state string) {
	if m != nil {
		m.BreakerTransitions.WithLabelValues(breaker, state).Inc()
	}
}

// RecordRejection counts a request refused by an open breaker.
func (m *Metrics) RecordRejection(breaker string) {
	if m != nil {
		m.BreakerRejections.WithLabelValues(breaker).Inc()
	}
}
