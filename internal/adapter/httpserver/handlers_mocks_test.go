package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/adapter/memory"
	"github.com/pscheid92/gamebridge/internal/adapter/sessionstore"
	"github.com/pscheid92/gamebridge/internal/app"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/config"
)

// mockAppService implements appService with function fields.
type mockAppService struct {
	getPlayerFn      func(ctx context.Context, playerID string) (*domain.Player, error)
	touchPlayerFn    func(ctx context.Context, playerID string) (*domain.Player, bool, error)
	submitAuthCodeFn func(ctx context.Context, playerID, authCode string) (app.ExchangeResult, error)

	calls int
}

func (m *mockAppService) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	m.calls++
	if m.getPlayerFn != nil {
		return m.getPlayerFn(ctx, playerID)
	}
	return nil, domain.ErrPlayerNotFound
}

func (m *mockAppService) TouchPlayer(ctx context.Context, playerID string) (*domain.Player, bool, error) {
	m.calls++
	if m.touchPlayerFn != nil {
		return m.touchPlayerFn(ctx, playerID)
	}
	return domain.NewPlayer(playerID, time.Now()), false, nil
}

func (m *mockAppService) SubmitAuthCode(ctx context.Context, playerID, authCode string) (app.ExchangeResult, error) {
	m.calls++
	if m.submitAuthCodeFn != nil {
		return m.submitAuthCodeFn(ctx, playerID, authCode)
	}
	return app.ExchangeResult{}, errors.New("not implemented")
}

// succeedingSubmit returns a submit function that accepts every code.
func succeedingSubmit(displayName string) func(context.Context, string, string) (app.ExchangeResult, error) {
	return func(_ context.Context, playerID, _ string) (app.ExchangeResult, error) {
		p := domain.NewPlayer(playerID, time.Now())
		p.DisplayName = displayName
		p.SetCredential(domain.Credential{AccessToken: "at", RefreshToken: "rt"})
		return app.ExchangeResult{Outcome: app.OutcomeSuccess, Player: p}, nil
	}
}

const testSessionSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:         "test",
		Port:           "0",
		SessionSecret:  testSessionSecret,
		SessionMaxAge:  time.Hour,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}
}

func newTestServer(t *testing.T, svc appService, opts ...Option) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), svc, nil, opts...)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, svc appService, checks []HealthCheck, opts ...Option) *Server {
	t.Helper()
	repo := memory.NewSessionRepo(clockwork.NewRealClock())
	return newTestServerWithSessions(t, cfg, svc, repo, checks, opts...)
}

func newTestServerWithSessions(t *testing.T, cfg *config.Config, svc appService, repo domain.SessionRepository, checks []HealthCheck, opts ...Option) *Server {
	t.Helper()
	store := sessionstore.New(repo, SessionOptions(cfg), []byte(cfg.SessionSecret))
	return NewServer(cfg, svc, store, checks, opts...)
}

// failingSessionRepo wraps a working repository and fails Load on demand,
// like a session backend that lost its connection.
type failingSessionRepo struct {
	domain.SessionRepository
	failLoad bool
	deletes  int
}

func (r *failingSessionRepo) Load(ctx context.Context, sessionID string) (string, error) {
	if r.failLoad {
		return "", errors.New("redis: connection refused")
	}
	return r.SessionRepository.Load(ctx, sessionID)
}

func (r *failingSessionRepo) Delete(ctx context.Context, sessionID string) error {
	r.deletes++
	return r.SessionRepository.Delete(ctx, sessionID)
}

func doRequest(srv *Server, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the live session cookie the response set, or nil.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.Value != "" && c.MaxAge >= 0 {
			found = c
		}
	}
	return found
}

// expiredSessionCookie reports whether the response expired the session cookie.
func expiredSessionCookie(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge < 0 {
			return true
		}
	}
	return false
}
