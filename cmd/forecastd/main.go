package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/forecast-scoring-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/forecast-scoring-service/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-scoring-service/internal/adapter/mapbox"
	"github.com/couchcryptid/forecast-scoring-service/internal/catalog"
	"github.com/couchcryptid/forecast-scoring-service/internal/config"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
	"github.com/couchcryptid/forecast-scoring-service/internal/pipeline"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := series.NewLoader(cfg.DataDir, logger, metrics)
	var source series.Source = loader
	if cfg.SeriesCacheSize > 0 {
		source = series.NewCachedLoader(loader, cfg.SeriesCacheSize, metrics)
		logger.Info("series cache enabled", "size", cfg.SeriesCacheSize)
	}

	scanner := catalog.NewScanner(cfg.DataDir)
	facade := query.New(
		scanner,
		source,
		scoring.NewMetricsReader(cfg.DataDir, logger, metrics),
		logger, metrics, cfg.QueryConcurrency,
	)
	logger.Info("forecast catalog loaded", "data_dir", scanner.Dir(), "models", facade.Models())

	// Region geocoding is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var locator httpadapter.RegionLocator
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		locator = mapbox.NewRegionLocator(mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics), logger)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// With Kafka enabled, readiness also waits for the startup score export.
	ready := httpadapter.ReadinessChecks{facade}
	var (
		writer *kafkaadapter.Writer
		exp    *pipeline.Exporter
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		exp = pipeline.New(facade, writer, logger, metrics, 5)
		ready = append(ready, exp)
	}

	years := httpadapter.Years{Forecast: cfg.ForecastYear, Unseen: cfg.UnseenYear}
	srv := httpadapter.NewServer(cfg.HTTPAddr, facade, ready, locator, years, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Publish the forecast year's scores once at startup.
	if exp != nil {
		go func() {
			if _, err := exp.Run(ctx, cfg.ForecastYear, pipeline.SourceMetrics); err != nil && ctx.Err() == nil {
				logger.Error("score export error", "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
