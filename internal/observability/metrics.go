package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the forecast service.
type Metrics struct {
	SeriesLoads     *prometheus.CounterVec   // labels: outcome={ok,not_found,schema,parse,error}
	MetricsLoads    *prometheus.CounterVec   // labels: outcome={ok,not_found,schema,parse,error}
	SeriesCache     *prometheus.CounterVec   // labels: result={hit,miss,stale}
	Queries         *prometheus.CounterVec   // labels: query, outcome={ok,empty,error}
	QueryDuration   *prometheus.HistogramVec // labels: query
	ModelsAvailable prometheus.Gauge

	// Score export metrics.
	ScoresPublished prometheus.Counter
	ExportErrors    prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SeriesLoads,
		m.MetricsLoads,
		m.SeriesCache,
		m.Queries,
		m.QueryDuration,
		m.ModelsAvailable,
		m.ScoresPublished,
		m.ExportErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are never exported, for
// short-lived processes such as the CLI.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SeriesLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "series_loads_total",
			Help:      "Series CSV loads by outcome.",
		}, []string{"outcome"}),
		MetricsLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "metrics_loads_total",
			Help:      "Precomputed metrics file loads by outcome.",
		}, []string{"outcome"}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "series_cache_total",
			Help:      "Series cache lookups by result.",
		}, []string{"result"}),
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "queries_total",
			Help:      "Facade queries by shape and outcome.",
		}, []string{"query", "outcome"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forecast",
			Name:      "query_duration_seconds",
			Help:      "Duration of a facade query including file reads.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"query"}),
		ModelsAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forecast",
			Name:      "models_available",
			Help:      "Number of models found in the data directory at the last scan.",
		}),
		ScoresPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "scores_published_total",
			Help:      "Total RMSE rows written to the scores topic.",
		}),
		ExportErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "export_errors_total",
			Help:      "Failed score export attempts.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forecast",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "forecast",
			Name:      "geocode_enabled",
			Help:      "1 when region geocoding is enabled, 0 otherwise.",
		}),
	}
}

// LoadOutcome maps a load error to a metric label.
func LoadOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrSchema):
		return "schema"
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrEmptyResult):
		return "empty"
	default:
		return "error"
	}
}
