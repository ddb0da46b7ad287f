// Package mockdata writes a deterministic forecast data directory: one hourly
// series per model, region, and year plus a metrics file per model for the
// year with observed values. Scores in the metrics files are computed from
// the generated series, so the metrics and raw RMSE paths agree.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
)

// DefaultModels are the model ids written when Options.Models is empty.
var DefaultModels = []string{"holtwinters", "lstm", "prophet"}

// Options controls what Generate writes.
type Options struct {
	Models       []string
	ForecastYear int // series carry actual_temperature
	UnseenYear   int // prediction-only series; 0 skips
	Seed         uint64
}

// Summary describes what Generate wrote.
type Summary struct {
	SeriesFiles  int
	MetricsFiles int
	Rows         int
}

// Generate writes the data directory under dir, creating it if needed.
func Generate(dir string, opts Options) (Summary, error) {
	if len(opts.Models) == 0 {
		opts.Models = DefaultModels
	}
	if opts.ForecastYear == 0 {
		return Summary{}, fmt.Errorf("forecast year is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create %s: %w", dir, err)
	}

	var sum Summary
	for mi, model := range opts.Models {
		scores := make(map[domain.Region]float64, len(domain.Regions()))
		for ri, region := range domain.Regions() {
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(mi*100+ri)))
			bias := float64(mi+1) * 0.4

			s := buildSeries(domain.SeriesKey{Model: model, Region: region, Year: opts.ForecastYear}, rng, float64(ri), bias, true)
			if err := writeSeries(dir, s); err != nil {
				return sum, err
			}
			sum.SeriesFiles++
			sum.Rows += s.Len()
			if score := scoring.RMSE(s); score.Valid {
				scores[region] = score.Value
			}

			if opts.UnseenYear != 0 {
				u := buildSeries(domain.SeriesKey{Model: model, Region: region, Year: opts.UnseenYear}, rng, float64(ri), bias, false)
				if err := writeSeries(dir, u); err != nil {
					return sum, err
				}
				sum.SeriesFiles++
				sum.Rows += u.Len()
			}
		}
		if err := writeMetrics(dir, model, opts.ForecastYear, scores); err != nil {
			return sum, err
		}
		sum.MetricsFiles++
	}
	return sum, nil
}

// buildSeries produces a full year of hourly rows. Temperatures follow a
// seasonal and diurnal cycle; predictions add a model bias and noise.
func buildSeries(key domain.SeriesKey, rng *rand.Rand, regionOffset, bias float64, withActual bool) domain.Series {
	start := time.Date(key.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	records := make([]domain.ForecastRecord, 0, 24*366)
	for ts := start; ts.Before(end); ts = ts.Add(time.Hour) {
		seasonal := 8 * math.Sin(2*math.Pi*(float64(ts.YearDay())-100)/365)
		diurnal := 6 * math.Sin(2*math.Pi*(float64(ts.Hour())-9)/24)
		actual := round2(27 + regionOffset*0.3 + seasonal + diurnal + rng.NormFloat64()*0.5)
		predicted := round2(actual + bias + rng.NormFloat64()*0.8)

		rec := domain.ForecastRecord{Timestamp: ts, Hour: ts.Hour(), Predicted: predicted}
		if withActual {
			a := actual
			rec.Actual = &a
		}
		records = append(records, rec)
	}
	return domain.Series{Key: key, Records: records}
}

func writeSeries(dir string, s domain.Series) error {
	rows := make([][]string, 0, s.Len()+1)
	rows = append(rows, []string{"date", "hour", "predicted_temperature", "actual_temperature"})
	for _, r := range s.Records {
		actual := ""
		if r.Actual != nil {
			actual = formatFloat(*r.Actual)
		}
		rows = append(rows, []string{
			r.Timestamp.Format("2006-01-02"),
			strconv.Itoa(r.Hour),
			formatFloat(r.Predicted),
			actual,
		})
	}
	return writeCSV(filepath.Join(dir, s.Key.FileName()), rows)
}

func writeMetrics(dir, model string, year int, scores map[domain.Region]float64) error {
	col := fmt.Sprintf("rmse_%d", year)
	rows := [][]string{{"region", col}}
	for _, region := range domain.Regions() {
		v, ok := scores[region]
		if !ok {
			continue
		}
		rows = append(rows, []string{region.Title(), strconv.FormatFloat(v, 'f', 3, 64)})
	}
	return writeCSV(filepath.Join(dir, domain.MetricsFileName(model, year)), rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
