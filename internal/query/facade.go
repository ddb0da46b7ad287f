// Package query composes the catalog, series loader and scorer into the
// query shapes served to the presentation layer. Every query is stateless:
// it reads from disk, computes, and returns.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

// Catalog lists the models available on disk.
type Catalog interface {
	Models() []string
}

// MetricsSource reads precomputed per-region RMSE values.
type MetricsSource interface {
	LoadMetrics(ctx context.Context, model string, year int) (map[domain.Region]float64, error)
}

// DayQuery selects one model, region and calendar day.
type DayQuery struct {
	Model  string
	Region domain.Region
	Year   int
	Month  domain.Month
	Day    int
}

// ModelComparison is one model's slice and score for a comparison query.
type ModelComparison struct {
	Model string          `json:"model"`
	Slice domain.DaySlice `json:"slice"`
	RMSE  scoring.Score   `json:"rmse"`
}

// Table maps model -> region -> RMSE.
type Table map[string]map[domain.Region]float64

// Facade serves the dashboard's query shapes.
type Facade struct {
	catalog     Catalog
	series      series.Source
	scores      MetricsSource
	logger      *slog.Logger
	metrics     *observability.Metrics
	concurrency int
}

// New creates a Facade. concurrency bounds the per-model fan-out of the
// comparison and raw table queries; values below 1 mean sequential.
func New(c Catalog, s series.Source, m MetricsSource, logger *slog.Logger, metrics *observability.Metrics, concurrency int) *Facade {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Facade{
		catalog:     c,
		series:      s,
		scores:      m,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// Models returns the cataloged model identifiers.
func (f *Facade) Models() []string {
	models := f.catalog.Models()
	f.metrics.ModelsAvailable.Set(float64(len(models)))
	return models
}

// CheckReadiness fails when the data directory holds no models.
func (f *Facade) CheckReadiness(_ context.Context) error {
	if len(f.Models()) == 0 {
		return errors.New("no models available in data directory")
	}
	return nil
}

// DailyForecast loads one series and narrows it to a single day. A date that
// does not exist on the calendar, or a day with no rows, returns an empty
// slice together with domain.ErrEmptyResult.
func (f *Facade) DailyForecast(ctx context.Context, q DayQuery) (slice domain.DaySlice, err error) {
	defer f.observe("daily_forecast", domain.Now(), &err)

	key := domain.SeriesKey{Model: q.Model, Region: q.Region, Year: q.Year}
	if err := f.validate(key, q.Month); err != nil {
		return domain.DaySlice{}, err
	}
	if !domain.ValidDate(q.Year, q.Month, q.Day) {
		return domain.DaySlice{Key: key, Records: []domain.ForecastRecord{}},
			fmt.Errorf("%s %d %d: %w", q.Month.Name(), q.Day, q.Year, domain.ErrEmptyResult)
	}

	s, err := f.series.Load(ctx, key)
	if err != nil {
		return domain.DaySlice{}, err
	}
	day := series.FilterByDay(s, q.Month, q.Day)
	if day.Empty() {
		return day, fmt.Errorf("%s %s %d %d: %w", key, q.Month.Name(), q.Day, q.Year, domain.ErrEmptyResult)
	}
	return day, nil
}

// AvailableDays lists the sorted days of month present in one series.
func (f *Facade) AvailableDays(ctx context.Context, model string, region domain.Region, year int, month domain.Month) (days []int, err error) {
	defer f.observe("available_days", domain.Now(), &err)

	key := domain.SeriesKey{Model: model, Region: region, Year: year}
	if err := f.validate(key, month); err != nil {
		return nil, err
	}
	s, err := f.series.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return series.Days(s, month), nil
}

// ComparisonForDay loads every cataloged model for one region and day and
// scores each slice. Models whose file is missing, fails to load, or has no
// rows for the day are left out. The result is ordered by model id no matter
// which load finishes first.
func (f *Facade) ComparisonForDay(ctx context.Context, region domain.Region, year int, month domain.Month, day int) (out []ModelComparison, err error) {
	defer f.observe("comparison", domain.Now(), &err)

	if !region.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRegion, region)
	}
	if !month.Valid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidMonth, month)
	}
	if !domain.ValidDate(year, month, day) {
		return []ModelComparison{}, nil
	}

	models := f.Models()
	results := make([]*ModelComparison, len(models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, model := range models {
		g.Go(func() error {
			key := domain.SeriesKey{Model: model, Region: region, Year: year}
			s, err := f.series.Load(gctx, key)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				f.logger.Debug("comparison skipping model", "model", model, "region", region, "year", year, "error", err)
				return nil
			}
			slice := series.FilterByDay(s, month, day)
			if slice.Empty() {
				return nil
			}
			results[i] = &ModelComparison{Model: model, Slice: slice, RMSE: scoring.RMSE(slice)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = make([]ModelComparison, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// RMSETable reads every cataloged model's precomputed metrics file for year.
// A model with a missing or malformed metrics file is omitted.
func (f *Facade) RMSETable(ctx context.Context, year int) (table Table, err error) {
	defer f.observe("rmse_table", domain.Now(), &err)

	table = make(Table)
	for _, model := range f.Models() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		scores, err := f.scores.LoadMetrics(ctx, model, year)
		if err != nil {
			f.logger.Debug("rmse table skipping model", "model", model, "year", year, "error", err)
			continue
		}
		table[model] = scores
	}
	return table, nil
}

// RawRMSETable scores each model and region from its full hourly series for
// year. Only pairs with a defined score appear. This path is independent of
// the metrics files and the two are never merged.
func (f *Facade) RawRMSETable(ctx context.Context, year int) (table Table, err error) {
	defer f.observe("raw_rmse_table", domain.Now(), &err)

	models := f.Models()
	rows := make([]map[domain.Region]float64, len(models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, model := range models {
		g.Go(func() error {
			scores := make(map[domain.Region]float64)
			for _, region := range domain.Regions() {
				s, err := f.series.Load(gctx, domain.SeriesKey{Model: model, Region: region, Year: year})
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					continue
				}
				if score := scoring.RMSE(s); score.Valid {
					scores[region] = score.Value
				}
			}
			if len(scores) > 0 {
				rows[i] = scores
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table = make(Table)
	for i, model := range models {
		if rows[i] != nil {
			table[model] = rows[i]
		}
	}
	return table, nil
}

// Models returns the table's model ids in sorted order, including models
// with no canonical region scores.
func (t Table) Models() []string {
	models := make([]string, 0, len(t))
	for m := range t {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}

// Rows flattens a table into MetricRows ordered by model, then by the
// canonical region order.
func (t Table) Rows(year int, source string) []domain.MetricRow {
	var rows []domain.MetricRow
	for _, m := range t.Models() {
		for _, r := range domain.Regions() {
			v, ok := t[m][r]
			if !ok {
				continue
			}
			rows = append(rows, domain.MetricRow{Model: m, Region: r, Year: year, RMSE: v, Source: source})
		}
	}
	return rows
}

func (f *Facade) validate(key domain.SeriesKey, month domain.Month) error {
	if !key.Region.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRegion, key.Region)
	}
	if !month.Valid() {
		return fmt.Errorf("%w: %d", domain.ErrInvalidMonth, month)
	}
	if !slices.Contains(f.Models(), key.Model) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownModel, key.Model)
	}
	return nil
}

func (f *Facade) observe(query string, start time.Time, err *error) {
	f.metrics.QueryDuration.WithLabelValues(query).Observe(domain.Since(start).Seconds())
	outcome := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, domain.ErrEmptyResult):
		outcome = "empty"
	default:
		outcome = "error"
	}
	f.metrics.Queries.WithLabelValues(query, outcome).Inc()
}
