package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/geo-position-etl/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/geo-position-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/geo-position-etl/internal/adapter/kafka"
	"github.com/couchcryptid/geo-position-etl/internal/config"
	"github.com/couchcryptid/geo-position-etl/internal/domain"
	"github.com/couchcryptid/geo-position-etl/internal/observability"
	"github.com/couchcryptid/geo-position-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Normalization cache (disabled with NORMALIZE_CACHE_SIZE=0).
	normalizer := domain.DefaultNormalizer
	if cfg.NormalizeCacheSize > 0 {
		normalizer = cache.NewCachedNormalizer(normalizer, cfg.NormalizeCacheSize, metrics)
		metrics.NormalizeCacheEnabled.Set(1)
		logger.Info("normalize cache enabled", "max_entries", cfg.NormalizeCacheSize)
	} else {
		logger.Info("normalize cache disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(normalizer, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, normalizer, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
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

	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}

	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	stats := p.Stats()
	logger.Info("shutdown complete", "loaded", stats.Loaded, "rejected", stats.Rejected)
}
