package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/weather-gateway/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-gateway/internal/adapter/kafka"
	"github.com/couchcryptid/weather-gateway/internal/adapter/postgres"
	"github.com/couchcryptid/weather-gateway/internal/adapter/weatherapi"
	"github.com/couchcryptid/weather-gateway/internal/auth"
	"github.com/couchcryptid/weather-gateway/internal/config"
	"github.com/couchcryptid/weather-gateway/internal/observability"
	"github.com/couchcryptid/weather-gateway/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.FirstSuperuserEmail != "" {
		if err := store.EnsureSuperuser(ctx, cfg.FirstSuperuserEmail, cfg.FirstSuperuserPassword); err != nil {
			logger.Error("failed to seed superuser", "error", err)
			os.Exit(1)
		}
	}

	// Audit publishing is feature-flagged via KAFKA_BROKERS.
	var audit httpadapter.AuditPublisher
	if cfg.AuditEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		audit = writer
		logger.Info("audit events enabled", "topic", cfg.KafkaAuditTopic)
	} else {
		logger.Info("audit events disabled")
	}

	client := weatherapi.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.WeatherRetryMax, logger)
	weatherSvc := weather.NewService(client, logger, metrics)
	authMgr := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, clockwork.NewRealClock())

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Users:   store,
		Items:   store,
		Weather: weatherSvc,
		Auth:    authMgr,
		Ready:   store,
		Audit:   audit,
		Logger:  logger,
		Metrics: metrics,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
