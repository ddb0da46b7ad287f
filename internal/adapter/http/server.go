package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
)

// QueryService is the read side the API exposes. *query.Facade implements it.
type QueryService interface {
	Models() []string
	AvailableDays(ctx context.Context, model string, region domain.Region, year int, month domain.Month) ([]int, error)
	DailyForecast(ctx context.Context, q query.DayQuery) (domain.DaySlice, error)
	ComparisonForDay(ctx context.Context, region domain.Region, year int, month domain.Month, day int) ([]query.ModelComparison, error)
	RMSETable(ctx context.Context, year int) (query.Table, error)
	RawRMSETable(ctx context.Context, year int) (query.Table, error)
}

// RegionLocator resolves region coordinates. It may be nil.
type RegionLocator interface {
	Locate(ctx context.Context, region domain.Region) (domain.GeocodingResult, bool)
}

// Years names the year with observed values and the prediction-only year.
type Years struct {
	Forecast int `json:"forecast"`
	Unseen   int `json:"unseen"`
}

// Server exposes health, readiness, metrics, and the forecast query API.
type Server struct {
	httpServer *http.Server
	svc        QueryService
	locator    RegionLocator
	years      Years
	logger     *slog.Logger
}

// ReadinessChecks is ready only when every check passes.
type ReadinessChecks []sharedobs.ReadinessChecker

// CheckReadiness returns the first failing check's error.
func (c ReadinessChecks) CheckReadiness(ctx context.Context) error {
	for _, check := range c {
		if err := check.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api/v1 routes.
func NewServer(addr string, svc QueryService, ready sharedobs.ReadinessChecker, locator RegionLocator, years Years, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		locator: locator,
		years:   years,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/models", s.handleModels)
	mux.HandleFunc("GET /api/v1/regions", s.handleRegions)
	mux.HandleFunc("GET /api/v1/months", s.handleMonths)
	mux.HandleFunc("GET /api/v1/years", s.handleYears)
	mux.HandleFunc("GET /api/v1/days", s.handleDays)
	mux.HandleFunc("GET /api/v1/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/v1/comparison", s.handleComparison)
	mux.HandleFunc("GET /api/v1/rmse", s.handleRMSE)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
