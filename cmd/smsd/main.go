package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridgecast/forecast-sms/internal/adapter/forecaststore"
	httpadapter "github.com/ridgecast/forecast-sms/internal/adapter/http"
	kafkaadapter "github.com/ridgecast/forecast-sms/internal/adapter/kafka"
	"github.com/ridgecast/forecast-sms/internal/adapter/registry"
	"github.com/ridgecast/forecast-sms/internal/adapter/terrain"
	"github.com/ridgecast/forecast-sms/internal/config"
	"github.com/ridgecast/forecast-sms/internal/observability"
	"github.com/ridgecast/forecast-sms/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := registry.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure registry schema", "error", err)
		os.Exit(1)
	}
	if err := forecaststore.EnsureSchema(ctx, pool); err != nil {
		logger.Error("failed to ensure forecast schema", "error", err)
		os.Exit(1)
	}

	terrainClient := terrain.NewClient(cfg.TerrainBaseURL, cfg.TerrainTimeout, metrics, logger)
	terrainSource := terrain.NewCachedSource(terrainClient, cfg.TerrainCacheSize, cfg.TerrainCacheTTL, metrics)
	logger.Info("terrain lookups enabled",
		"base_url", cfg.TerrainBaseURL, "cache_size", cfg.TerrainCacheSize, "cache_ttl", cfg.TerrainCacheTTL)

	responder, err := pipeline.NewResponder(cfg,
		registry.NewPostgres(pool),
		forecaststore.NewPostgres(pool),
		terrainSource,
		logger, metrics,
	)
	if err != nil {
		logger.Error("failed to build responder", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(reader, responder, writer, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, responder, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the reply pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
