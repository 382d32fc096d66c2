package app

import "github.com/pscheid92/gamebridge/internal/domain"

// Outcome is the result variant of an auth code submission.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeConfigError
	OutcomeExchangeFailed
	OutcomeIdentityMismatch
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeConfigError:
		return "config_error"
	case OutcomeExchangeFailed:
		return "exchange_failed"
	case OutcomeIdentityMismatch:
		return "identity_mismatch"
	default:
		return "unknown"
	}
}

// ExchangeResult reports how a submission ended. Player is the saved record
// on success and the unchanged stored record otherwise. Err carries the
// cause of a failed outcome.
type ExchangeResult struct {
	Outcome Outcome
	Player  *domain.Player
	Err     error
}

func (r ExchangeResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}
