package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
)

// Score sources accepted by Run.
const (
	SourceMetrics = "metrics"
	SourceRaw     = "raw"
)

// ScoreSource builds RMSE tables. *query.Facade implements it.
type ScoreSource interface {
	RMSETable(ctx context.Context, year int) (query.Table, error)
	RawRMSETable(ctx context.Context, year int) (query.Table, error)
}

// BatchLoader writes score rows to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, rows []domain.MetricRow) error
}

// Exporter publishes a year's RMSE table as one batch of score rows.
type Exporter struct {
	source      ScoreSource
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	maxAttempts int
	ready       atomic.Bool

	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// New creates an Exporter that tries each publish at most maxAttempts times.
func New(s ScoreSource, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, maxAttempts int) *Exporter {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Exporter{
		source:         s,
		loader:         l,
		logger:         logger,
		metrics:        metrics,
		maxAttempts:    maxAttempts,
		initialBackoff: 200 * time.Millisecond,
		maxBackoff:     5 * time.Second,
	}
}

// CheckReadiness returns nil once a Run has completed, including one that
// found nothing to publish.
func (e *Exporter) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("no scores published yet")
	}
	return nil
}

// Run builds the table for year from source ("metrics" or "raw") and
// publishes it. It returns the number of rows published. An empty table is
// not an error and publishes nothing.
func (e *Exporter) Run(ctx context.Context, year int, source string) (int, error) {
	start := domain.Now()

	var (
		table query.Table
		err   error
	)
	switch source {
	case SourceMetrics:
		table, err = e.source.RMSETable(ctx, year)
	case SourceRaw:
		table, err = e.source.RawRMSETable(ctx, year)
	default:
		return 0, fmt.Errorf("unknown score source %q", source)
	}
	if err != nil {
		return 0, fmt.Errorf("build %s table for %d: %w", source, year, err)
	}

	rows := table.Rows(year, source)
	if len(rows) == 0 {
		e.logger.Info("no scores to publish", "year", year, "source", source)
		e.ready.Store(true)
		return 0, nil
	}

	if err := e.publish(ctx, rows); err != nil {
		return 0, err
	}

	e.metrics.ScoresPublished.Add(float64(len(rows)))
	e.ready.Store(true)
	e.logger.Info("scores published",
		"year", year,
		"source", source,
		"count", len(rows),
		"duration", domain.Since(start),
	)
	return len(rows), nil
}

// publish loads rows, retrying with exponential backoff: start at 200ms,
// double each retry, cap at 5s.
func (e *Exporter) publish(ctx context.Context, rows []domain.MetricRow) error {
	backoff := e.initialBackoff
	var err error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err = e.loader.LoadBatch(ctx, rows); err == nil {
			return nil
		}
		e.metrics.ExportErrors.Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Error("load batch failed", "error", err, "attempt", attempt, "batch_size", len(rows))
		if attempt == e.maxAttempts {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = nextBackoff(backoff, e.maxBackoff)
	}
	return fmt.Errorf("publish scores after %d attempts: %w", e.maxAttempts, err)
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
