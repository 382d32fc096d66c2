package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"github.com/pscheid92/gamebridge/internal/app"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/config"
)

type appService interface {
	GetPlayer(ctx context.Context, playerID string) (*domain.Player, error)
	TouchPlayer(ctx context.Context, playerID string) (*domain.Player, bool, error)
	SubmitAuthCode(ctx context.Context, playerID, authCode string) (app.ExchangeResult, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	sessionStore sessions.Store
	healthChecks []HealthCheck

	registry    *prometheus.Registry
	httpMetrics *metrics.HTTPMetrics

	startTime time.Time
}

// Option customises a Server at construction.
type Option func(*Server)

// WithMetrics records HTTP metrics on reg and serves it at /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
		s.httpMetrics = metrics.NewHTTPMetrics(reg)
	}
}

func NewServer(cfg *config.Config, app appService, sessionStore sessions.Store, healthChecks []HealthCheck, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: sessionStore,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP lets the server be driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

const sessionName = "gamebridge-session"

// SessionOptions returns the cookie settings for the session store.
func SessionOptions(cfg *config.Config) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
}
