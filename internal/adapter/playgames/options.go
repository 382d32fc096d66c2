package playgames

import (
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"github.com/pscheid92/gamebridge/internal/domain"
)

// Options configures the Exchanger and the GamesClient. Both should share
// one Breaker so that an unhealthy Google trips the flow as a whole.
type Options struct {
	SecretsFile string
	// TokenURL overrides the token endpoint from the secrets file.
	TokenURL string
	// APIEndpoint overrides the Play Games API base URL, e.g. for tests.
	APIEndpoint string
	Timeout     time.Duration
	HTTPClient  *http.Client
	UserAgent   string
	Breaker     circuitbreaker.CircuitBreaker[any]
	Metrics     *metrics.ExchangeMetrics
}

func (o Options) httpClient() *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	return http.DefaultClient
}

// NewExchanger loads the client secrets. When they are unusable the returned
// exchanger refuses every exchange with domain.ErrConfiguration, and the load
// error is returned as well so the caller can log it.
func NewExchanger(o Options) (domain.TokenExchanger, error) {
	secrets, err := LoadClientSecrets(o.SecretsFile, o.TokenURL)
	if err != nil {
		return misconfigured{cause: err}, err
	}
	return &Exchanger{
		cfg:        secrets.OAuth,
		appID:      secrets.ApplicationID,
		httpClient: o.httpClient(),
		guard:      newGuard(o.Breaker, o.Metrics, o.Timeout),
	}, nil
}
