// Package breaker builds the failsafe-go circuit breakers guarding the
// backend's outbound dependencies.
package breaker

import (
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
)

// Settings tune a breaker. The zero value is not usable; start from Defaults.
type Settings struct {
	FailureRate      float64
	MinExecutions    uint
	Window           time.Duration
	Delay            time.Duration
	SuccessesToClose uint
}

// Defaults trips at 60% failures over at least 5 calls in 10s and probes
// again after 30s.
var Defaults = Settings{
	FailureRate:      0.6,
	MinExecutions:    5,
	Window:           10 * time.Second,
	Delay:            30 * time.Second,
	SuccessesToClose: 1,
}

// StateObserver receives every state transition, e.g. to update a gauge.
type StateObserver func(component, state string, value float64)

func New(component string, s Settings, observe StateObserver) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(s.FailureRate, s.MinExecutions, s.Window).
		WithDelay(s.Delay).
		WithSuccessThreshold(s.SuccessesToClose).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", component,
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if observe != nil {
				observe(component, e.NewState.String(), StateValue(e.NewState))
			}
		}).
		Build()
}

// StateValue maps a state onto the gauge encoding 0=closed, 1=half-open, 2=open.
func StateValue(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}
