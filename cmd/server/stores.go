package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/gamebridge/internal/adapter/httpserver"
	"github.com/pscheid92/gamebridge/internal/adapter/memory"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"github.com/pscheid92/gamebridge/internal/adapter/postgres"
	"github.com/pscheid92/gamebridge/internal/adapter/redis"
	"github.com/pscheid92/gamebridge/internal/domain"
	"github.com/pscheid92/gamebridge/internal/platform/breaker"
	"github.com/pscheid92/gamebridge/internal/platform/config"
	"github.com/pscheid92/gamebridge/internal/platform/crypto"
	"github.com/pscheid92/gamebridge/internal/platform/retry"
)

const sessionEvictionInterval = time.Minute

// stores bundles the repositories of the selected backend.
type stores struct {
	players  domain.PlayerRepository
	sessions domain.SessionRepository
	checks   []httpserver.HealthCheck
	close    func()
}

func setupStores(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, exchangeMetrics *metrics.ExchangeMetrics, clock clockwork.Clock) (*stores, error) {
	cryptoSvc, err := crypto.New(cfg.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create crypto service: %w", err)
	}

	switch cfg.StoreBackend {
	case config.StoreRedis:
		return setupRedis(ctx, cfg, reg, exchangeMetrics, cryptoSvc, clock)
	case config.StorePostgres:
		return setupPostgres(ctx, cfg, reg, cryptoSvc, clock)
	default:
		return setupMemory(clock), nil
	}
}

func setupMemory(clock clockwork.Clock) *stores {
	players := memory.NewPlayerRepo(clock)
	sessions := memory.NewSessionRepo(clock)
	stop := startSessionEviction(sessions, clock)

	return &stores{
		players:  players,
		sessions: sessions,
		checks: []httpserver.HealthCheck{
			{Name: "players", Check: players.Ping},
		},
		close: stop,
	}
}

// startSessionEviction drops expired in-memory sessions periodically.
func startSessionEviction(sessions *memory.SessionRepo, clock clockwork.Clock) func() {
	ticker := clock.NewTicker(sessionEvictionInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.Chan():
				if n := sessions.EvictExpired(); n > 0 {
					slog.Debug("Evicted expired sessions", "count", n)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

func setupRedis(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, exchangeMetrics *metrics.ExchangeMetrics, cryptoSvc crypto.Service, clock clockwork.Clock) (*stores, error) {
	cb := breaker.New("redis", breaker.Defaults, exchangeMetrics.RecordBreakerState)
	client, err := redis.NewClient(cfg.RedisURL,
		redis.NewMetricsHook(metrics.NewStoreMetrics(reg)),
		redis.NewCircuitBreakerHook(cb),
	)
	if err != nil {
		return nil, err
	}

	if err := retry.WaitFor(ctx, retry.DefaultPolicy, "redis", client.Ping); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	rdb := client.Underlying()
	return &stores{
		players:  redis.NewPlayerRepo(rdb, cryptoSvc, clock),
		sessions: redis.NewSessionRepo(rdb),
		checks: []httpserver.HealthCheck{
			{Name: "redis", Check: client.Ping},
		},
		close: func() { _ = client.Close() },
	}, nil
}

func setupPostgres(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, cryptoSvc crypto.Service, clock clockwork.Clock) (*stores, error) {
	tracer := postgres.NewMetricsTracer(metrics.NewDBMetrics(reg))

	var pool *pgxpool.Pool
	err := retry.WaitFor(ctx, retry.DefaultPolicy, "postgres", func(ctx context.Context) error {
		p, err := postgres.Connect(ctx, cfg.DatabaseURL, tracer)
		if err != nil {
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	players := postgres.NewPlayerRepo(pool, cryptoSvc, clock)
	// Session bindings are short-lived and stay in memory with this backend.
	sessions := memory.NewSessionRepo(clock)
	stop := startSessionEviction(sessions, clock)

	return &stores{
		players:  players,
		sessions: sessions,
		checks: []httpserver.HealthCheck{
			{Name: "postgres", Check: players.Ping},
		},
		close: func() {
			stop()
			pool.Close()
		},
	}, nil
}
