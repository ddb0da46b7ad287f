package scoring

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
)

// MetricsReader reads precomputed "<model>_model_metrics_<year>.csv" files.
type MetricsReader struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMetricsReader creates a reader rooted at dir.
func NewMetricsReader(dir string, logger *slog.Logger, metrics *observability.Metrics) *MetricsReader {
	return &MetricsReader{dir: dir, logger: logger, metrics: metrics}
}

// LoadMetrics returns the RMSE per canonical region for model and year.
// Regions absent from the file are absent from the map; callers render them
// as blank rather than dropping the column.
func (r *MetricsReader) LoadMetrics(ctx context.Context, model string, year int) (map[domain.Region]float64, error) {
	out, err := r.load(ctx, model, year)
	r.metrics.MetricsLoads.WithLabelValues(observability.LoadOutcome(err)).Inc()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		r.logger.Warn("metrics load failed", "model", model, "year", year, "error", err)
	}
	return out, err
}

func (r *MetricsReader) load(ctx context.Context, model string, year int) (map[domain.Region]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := domain.MetricsFileName(model, year)
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("metrics %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	out, err := ParseMetrics(f, year)
	if err != nil {
		return nil, fmt.Errorf("metrics %s: %w", name, err)
	}
	return out, nil
}

// ParseMetrics reads a metrics CSV. The score column is "rmse_<year>", with a
// bare "rmse" column accepted as a fallback.
func ParseMetrics(rd io.Reader, year int) (map[domain.Region]float64, error) {
	reader := csv.NewReader(rd)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", domain.ErrSchema)
		}
		return nil, fmt.Errorf("read header: %v: %w", err, domain.ErrParse)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[domain.NormalizeHeader(h)] = i
	}
	regionIdx, ok := cols["region"]
	if !ok {
		return nil, fmt.Errorf("missing %q column: %w", "region", domain.ErrSchema)
	}
	scoreCol := fmt.Sprintf("rmse_%d", year)
	scoreIdx, ok := cols[scoreCol]
	if !ok {
		if scoreIdx, ok = cols["rmse"]; !ok {
			return nil, fmt.Errorf("missing %q column: %w", scoreCol, domain.ErrSchema)
		}
	}

	out := make(map[domain.Region]float64)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, domain.ErrParse)
		}
		if regionIdx >= len(row) || scoreIdx >= len(row) {
			continue
		}

		region := domain.Region(domain.NormalizeRegion(row[regionIdx]))
		if !region.Valid() {
			continue
		}
		raw := strings.TrimSpace(row[scoreIdx])
		if raw == "" || strings.EqualFold(raw, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: unparseable %s %q: %w", line, scoreCol, raw, domain.ErrParse)
		}
		out[region] = v
	}
	return out, nil
}
