package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/gamebridge/internal/adapter/httpserver"
	"github.com/pscheid92/gamebridge/internal/adapter/metrics"
	"github.com/pscheid92/gamebridge/internal/adapter/playgames"
	"github.com/pscheid92/gamebridge/internal/adapter/sessionstore"
	"github.com/pscheid92/gamebridge/internal/app"
	"github.com/pscheid92/gamebridge/internal/platform/breaker"
	"github.com/pscheid92/gamebridge/internal/platform/config"
	"github.com/pscheid92/gamebridge/internal/platform/logging"
	"github.com/pscheid92/gamebridge/internal/platform/version"
	"github.com/spf13/cobra"
)

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func run(cfg *config.Config) error {
	clock := clockwork.NewRealClock()

	reg := metrics.NewRegistry()
	exchangeMetrics := metrics.NewExchangeMetrics(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	st, err := setupStores(ctx, cfg, reg, exchangeMetrics, clock)
	cancel()
	if err != nil {
		return err
	}
	defer st.close()

	upstream := playgames.Options{
		SecretsFile: cfg.ClientSecretFile,
		TokenURL:    cfg.OAuthTokenURL,
		APIEndpoint: cfg.GamesAPIEndpoint,
		Timeout:     cfg.UpstreamTimeout,
		UserAgent:   version.UserAgent(),
		Breaker:     breaker.New("playgames", breaker.Defaults, exchangeMetrics.RecordBreakerState),
		Metrics:     exchangeMetrics,
	}
	exchanger, err := playgames.NewExchanger(upstream)
	if err != nil {
		// The server still answers health probes and /player/test.
		slog.Error("OAuth client secrets unusable, auth code exchanges will fail", "file", cfg.ClientSecretFile, "error", err)
	}

	appSvc := app.NewService(st.players, exchanger, playgames.NewGamesClient(upstream), exchangeMetrics)

	store := sessionstore.New(st.sessions, httpserver.SessionOptions(cfg), []byte(cfg.SessionSecret))
	srv := httpserver.NewServer(cfg, appSvc, store, st.checks, httpserver.WithMetrics(reg))

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port, "store", cfg.StoreBackend)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}

func newRootCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:     "gamebridge",
		Short:   "Play Games auth code exchange backend",
		Version: version.Version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setupConfig()
			if port != "" {
				cfg.Port = port
			}

			logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
			slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

			return run(cfg)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
