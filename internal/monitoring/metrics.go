package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// ExternalAPIMetrics records calls to the wallet, swap, and delivery
// collaborators.
type ExternalAPIMetrics struct {
	callDuration        *prometheus.HistogramVec
	callsTotal          *prometheus.CounterVec
	circuitBreakerState *prometheus.GaugeVec
}

func NewExternalAPIMetrics(registry *prometheus.Registry) *ExternalAPIMetrics {
	m := &ExternalAPIMetrics{
		callDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shieldtip_external_call_duration_seconds",
				Help:    "Duration of external collaborator calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"service", "operation"},
		),
		callsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shieldtip_external_calls_total",
				Help: "Count of external collaborator calls by outcome",
			},
			[]string{"service", "operation", "outcome"},
		),
		circuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shieldtip_circuit_breaker_state",
				Help: "Circuit breaker state per external service (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(m.callDuration, m.callsTotal, m.circuitBreakerState)
	return m
}

func (m *ExternalAPIMetrics) ObserveCall(service, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	m.callDuration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
	m.callsTotal.WithLabelValues(service, operation, outcome).Inc()
}

func (m *ExternalAPIMetrics) UpdateCircuitBreakerState(service string, state gobreaker.State) {
	var value float64
	switch state {
	case gobreaker.StateClosed:
		value = 0
	case gobreaker.StateHalfOpen:
		value = 1
	case gobreaker.StateOpen:
		value = 2
	}

	m.circuitBreakerState.WithLabelValues(service).Set(value)
}
