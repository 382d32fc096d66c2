package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics_RecordsRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/player/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/player/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/player/:id", "200")))
}

func TestHTTPMetrics_RecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/player/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusForbidden)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/player/x", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/player/:id", "403")))
}

func TestHTTPMetrics_SkipsHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/health/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, 0, testutil.CollectAndCount(m.RequestsTotal))
}

func TestExchangeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewExchangeMetrics(reg)

	m.RecordOutcome(OutcomeSuccess)
	m.RecordOutcome(OutcomeSuccess)
	m.RecordOutcome(OutcomeIdentityMismatch)
	m.ObserveUpstream("token", errors.New("boom"), 0.2)
	m.RecordBreakerState("playgames", "open", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Outcomes.WithLabelValues(OutcomeIdentityMismatch)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.UpstreamDuration))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("playgames")))
}

func TestExchangeMetrics_NilSafe(t *testing.T) {
	var m *ExchangeMetrics
	assert.NotPanics(t, func() {
		m.RecordOutcome(OutcomeSuccess)
		m.ObserveUpstream("verify", nil, 0.1)
		m.RecordBreakerState("playgames", "closed", 0)
	})
}
