package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Exchange outcome label values.
const (
	OutcomeSuccess          = "success"
	OutcomeConfigError      = "config_error"
	OutcomeExchangeFailed   = "exchange_failed"
	OutcomeIdentityMismatch = "identity_mismatch"
)

// ExchangeMetrics covers the auth code flow and its upstream calls.
type ExchangeMetrics struct {
	Outcomes           *prometheus.CounterVec
	UpstreamDuration   *prometheus.HistogramVec
	BreakerState       *prometheus.GaugeVec
	BreakerTransitions *prometheus.CounterVec
}

func NewExchangeMetrics(reg prometheus.Registerer) *ExchangeMetrics {
	factory := promauto.With(reg)
	return &ExchangeMetrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exchange",
			Name:      "outcomes_total",
			Help:      "Auth code submissions by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "call_duration_seconds",
			Help:      "Duration of calls to the OAuth token endpoint and the Play Games API.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"call", "status"}),
		BreakerState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state",
			Help:      "Current circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		BreakerTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "circuit_breaker",
			Name:      "state_changes_total",
			Help:      "Circuit breaker state transitions by component and new state.",
		}, []string{"component", "state"}),
	}
}

// RecordOutcome is nil-safe so that tests can run without a registry.
func (m *ExchangeMetrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

func (m *ExchangeMetrics) ObserveUpstream(call string, err error, seconds float64) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.UpstreamDuration.WithLabelValues(call, status).Observe(seconds)
}

func (m *ExchangeMetrics) RecordBreakerState(component, state string, value float64) {
	if m == nil {
		return
	}
	m.BreakerTransitions.WithLabelValues(component, state).Inc()
	m.BreakerState.WithLabelValues(component).Set(value)
}
