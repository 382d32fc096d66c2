package playgames

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Call names used as metric labels.
const (
	callToken     = "token"
	callVerify    = "verify"
	callGetPlayer = "players_get"
)

// ErrUnavailable is returned without calling Google while the breaker is open.
var ErrUnavailable = errors.New("play games upstream unavailable")

// guard applies the breaker, the per-call timeout and metrics to an upstream call.
type guard struct {
	cb      circuitbreaker.CircuitBreaker[any]
	metrics *metrics.ExchangeMetrics
	timeout time.Duration
}

func newGuard(cb circuitbreaker.CircuitBreaker[any], m *metrics.ExchangeMetrics, timeout time.Duration) *guard {
	return &guard{cb: cb, metrics: m, timeout: timeout}
}

func (g *guard) run(ctx context.Context, call string, fn func(ctx context.Context) error) error {
	if g.cb != nil && !g.cb.TryAcquirePermit() {
		g.metrics.ObserveUpstream(call, ErrUnavailable, 0)
		return fmt.Errorf("%s: %w", call, ErrUnavailable)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	g.metrics.ObserveUpstream(call, err, time.Since(start).Seconds())

	if g.cb != nil {
		if err != nil && !isClientError(err) {
			g.cb.RecordError(err)
		} else {
			g.cb.RecordSuccess()
		}
	}
	return err
}

// isClientError reports whether Google rejected the request itself.
func isClientError(err error) bool {
	if re, ok := errors.AsType[*oauth2.RetrieveError](err); ok && re.Response != nil {
		return re.Response.StatusCode >= 400 && re.Response.StatusCode < 500
	}
	if ge, ok := errors.AsType[*googleapi.Error](err); ok {
		return ge.Code >= 400 && ge.Code < 500 && ge.Code != http.StatusTooManyRequests
	}
	return false
}
