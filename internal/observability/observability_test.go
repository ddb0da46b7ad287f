package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/couchcryptid/forecast-scoring-service/internal/config"
	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoadOutcome(t *testing.T) {
	assert.Equal(t, "ok", LoadOutcome(nil))
	assert.Equal(t, "not_found", LoadOutcome(fmt.Errorf("open: %w", domain.ErrNotFound)))
	assert.Equal(t, "schema", LoadOutcome(fmt.Errorf("x: %w", domain.ErrSchema)))
	assert.Equal(t, "parse", LoadOutcome(fmt.Errorf("x: %w", domain.ErrParse)))
	assert.Equal(t, "empty", LoadOutcome(domain.ErrEmptyResult))
	assert.Equal(t, "error", LoadOutcome(errors.New("disk on fire")))
}

func TestNewTextLogger_WritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "DEBUG")

	logger.Debug("loaded series", "model", "holtwinters")

	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "model=holtwinters")
}

func TestNewTextLogger_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "warn")

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestNewTextLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, "bogus")

	logger.Debug("hidden")
	assert.Empty(t, buf.String())
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewLogger_UsesConfiguredLevel(t *testing.T) {
	logger := NewLogger(&config.Config{LogLevel: "error", LogFormat: "json"})

	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.SeriesLoads.WithLabelValues("ok").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.SeriesLoads.WithLabelValues("ok")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.SeriesLoads.WithLabelValues("ok")), 0)
}
