// Package validate checks a forecast data directory for missing, malformed,
// or inconsistent files. Each check runs as a named phase that collects
// errors rather than stopping at the first one.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

// Phase tracks pass/fail for one group of checks.
type Phase struct {
	Name   string
	Errors []string
}

func (p *Phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

// Passed reports whether the phase recorded no errors.
func (p *Phase) Passed() bool { return len(p.Errors) == 0 }

// Report is the outcome of a validation run.
type Report struct {
	Phases       []*Phase
	Models       int
	SeriesFiles  int
	SeriesRows   int
	MetricsFiles int
}

// Passed reports whether every phase passed.
func (r Report) Passed() bool {
	for _, p := range r.Phases {
		if !p.Passed() {
			return false
		}
	}
	return true
}

// Options selects the years to check. Only ForecastYear is expected to carry
// observed values and a metrics file.
type Options struct {
	ForecastYear int
	UnseenYear   int     // 0 skips the prediction-only year
	Tolerance    float64 // allowed |metrics - raw| RMSE difference
}

// Validator runs the phases against the given sources.
type Validator struct {
	models  []string
	series  series.Source
	metrics query.MetricsSource
}

// New creates a Validator for models.
func New(models []string, s series.Source, m query.MetricsSource) *Validator {
	return &Validator{models: models, series: s, metrics: m}
}

// Run executes every phase.
func (v *Validator) Run(ctx context.Context, opts Options) Report {
	rep := Report{Models: len(v.models)}

	catalogPhase := &Phase{Name: "Catalog"}
	if len(v.models) == 0 {
		catalogPhase.errorf("no forecast models found")
	}

	seriesPhase := &Phase{Name: "Series files"}
	raw := make(query.Table)
	for _, model := range v.models {
		for _, region := range domain.Regions() {
			s, ok := v.checkSeries(ctx, seriesPhase, domain.SeriesKey{Model: model, Region: region, Year: opts.ForecastYear}, true)
			if ok {
				rep.SeriesFiles++
				rep.SeriesRows += s.Len()
				if score := scoring.RMSE(s); score.Valid {
					if raw[model] == nil {
						raw[model] = make(map[domain.Region]float64)
					}
					raw[model][region] = score.Value
				}
			}
			if opts.UnseenYear == 0 {
				continue
			}
			if s, ok := v.checkSeries(ctx, seriesPhase, domain.SeriesKey{Model: model, Region: region, Year: opts.UnseenYear}, false); ok {
				rep.SeriesFiles++
				rep.SeriesRows += s.Len()
			}
		}
	}

	metricsPhase := &Phase{Name: "Metrics files"}
	consistencyPhase := &Phase{Name: "Metrics vs raw RMSE"}
	for _, model := range v.models {
		scores, err := v.metrics.LoadMetrics(ctx, model, opts.ForecastYear)
		if err != nil {
			metricsPhase.errorf("%s: %v", domain.MetricsFileName(model, opts.ForecastYear), err)
			continue
		}
		rep.MetricsFiles++
		for _, region := range domain.Regions() {
			m, ok := scores[region]
			if !ok {
				metricsPhase.errorf("%s: no score for %s", domain.MetricsFileName(model, opts.ForecastYear), region)
				continue
			}
			r, ok := raw[model][region]
			if !ok {
				continue
			}
			if math.Abs(m-r) > opts.Tolerance {
				consistencyPhase.errorf("%s/%s: metrics %.3f vs raw %.3f", model, region, m, r)
			}
		}
	}

	rep.Phases = []*Phase{catalogPhase, seriesPhase, metricsPhase, consistencyPhase}
	return rep
}

func (v *Validator) checkSeries(ctx context.Context, p *Phase, key domain.SeriesKey, wantActuals bool) (domain.Series, bool) {
	s, err := v.series.Load(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p.errorf("%s: missing", key.FileName())
		return s, false
	case err != nil:
		p.errorf("%s: %v", key.FileName(), err)
		return s, false
	case s.Empty():
		p.errorf("%s: no rows", key.FileName())
		return s, false
	}
	if wantActuals && !s.HasActuals() {
		p.errorf("%s: no actual_temperature values", key.FileName())
	}
	if !wantActuals && s.HasActuals() {
		p.errorf("%s: prediction-only year carries actual_temperature values", key.FileName())
	}
	return s, true
}

// Write prints a PASS/FAIL summary followed by each failing phase's errors.
func (r Report) Write(w io.Writer) {
	for _, p := range r.Phases {
		status := "\033[32mPASS\033[0m"
		if !p.Passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.Errors))
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.Name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files: %d models, %d series (%d rows), %d metrics\n",
		r.Models, r.SeriesFiles, r.SeriesRows, r.MetricsFiles)

	for _, p := range r.Phases {
		if p.Passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.Name)
		for i, e := range p.Errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if r.Passed() {
		fmt.Fprintln(w, "\nAll validations passed.")
		return
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
}
