// Package series loads hourly forecast CSV files and slices them by calendar
// period.
package series

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
)

const (
	colDate      = "date"
	colHour      = "hour"
	colPredicted = "predicted_temperature"
	colActual    = "actual_temperature"
)

// dateLayouts are tried in order for the date column.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// Source loads one series by key.
type Source interface {
	Load(ctx context.Context, key domain.SeriesKey) (domain.Series, error)
}

// Loader reads series files from a data directory. It implements Source.
type Loader struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{dir: dir, logger: logger, metrics: metrics}
}

// Path returns the file path for key.
func (l *Loader) Path(key domain.SeriesKey) string {
	return filepath.Join(l.dir, key.FileName())
}

// Load opens and parses the series file for key. A missing file yields an
// error wrapping domain.ErrNotFound.
func (l *Loader) Load(ctx context.Context, key domain.SeriesKey) (domain.Series, error) {
	s, err := l.load(ctx, key)
	l.metrics.SeriesLoads.WithLabelValues(observability.LoadOutcome(err)).Inc()
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		l.logger.Warn("series load failed", "model", key.Model, "region", key.Region, "year", key.Year, "error", err)
	}
	return s, err
}

func (l *Loader) load(ctx context.Context, key domain.SeriesKey) (domain.Series, error) {
	if err := ctx.Err(); err != nil {
		return domain.Series{}, err
	}

	path := l.Path(key)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Series{}, fmt.Errorf("series %s: %w", key.FileName(), domain.ErrNotFound)
		}
		return domain.Series{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := Parse(f, key)
	if err != nil {
		return domain.Series{}, fmt.Errorf("series %s: %w", key.FileName(), err)
	}
	l.logger.Debug("series loaded", "model", key.Model, "region", key.Region, "year", key.Year, "records", s.Len())
	return s, nil
}

// Parse reads a series CSV from r. Required columns are validated once from
// the header before any row is read.
func Parse(r io.Reader, key domain.SeriesKey) (domain.Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Series{}, fmt.Errorf("empty file: %w", domain.ErrSchema)
		}
		return domain.Series{}, fmt.Errorf("read header: %w", domain.ErrParse)
	}

	cols := indexColumns(header)
	dateIdx, ok := cols[colDate]
	if !ok {
		return domain.Series{}, fmt.Errorf("missing %q column: %w", colDate, domain.ErrParse)
	}
	hourIdx, hasHour := cols[colHour]
	predIdx, hasPred := cols[colPredicted]
	if !hasHour || !hasPred {
		return domain.Series{}, fmt.Errorf("missing required columns %q and %q: %w", colHour, colPredicted, domain.ErrSchema)
	}
	actualIdx, hasActual := cols[colActual]

	var records []domain.ForecastRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %v: %w", line, err, domain.ErrParse)
		}

		date, err := parseDate(cell(row, dateIdx))
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		hour, err := parseHour(cell(row, hourIdx))
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}
		predicted, err := parseFloat(colPredicted, cell(row, predIdx))
		if err != nil {
			return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
		}

		rec := domain.ForecastRecord{
			Timestamp: date.Add(time.Duration(hour) * time.Hour),
			Hour:      hour,
			Predicted: predicted,
		}
		if hasActual {
			actual, err := parseOptionalFloat(colActual, cell(row, actualIdx))
			if err != nil {
				return domain.Series{}, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Actual = actual
		}
		records = append(records, rec)
	}

	return domain.Series{Key: key, Records: records}, nil
}

func indexColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[domain.NormalizeHeader(h)] = i
	}
	return idx
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDate returns the calendar day of s at midnight UTC.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q: %w", s, domain.ErrParse)
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(s)
	if err != nil {
		// Some exports write hours as floats ("13.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("unparseable hour %q: %w", s, domain.ErrParse)
		}
		h = int(f)
	}
	if h < 0 || h > 23 {
		return 0, fmt.Errorf("hour %d out of range: %w", h, domain.ErrParse)
	}
	return h, nil
}

func parseFloat(col, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("unparseable %s %q: %w", col, s, domain.ErrParse)
	}
	return v, nil
}

// parseOptionalFloat treats blank and NaN cells as absent.
func parseOptionalFloat(col, s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
		return nil, nil
	}
	v, err := parseFloat(col, s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
