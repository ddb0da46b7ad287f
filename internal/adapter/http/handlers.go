package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

// errBadRequest marks malformed query parameters.
var errBadRequest = errors.New("bad request")

type point struct {
	Hour      int       `json:"hour"`
	Timestamp time.Time `json:"timestamp"`
	Predicted float64   `json:"predicted_temperature"`
	Actual    *float64  `json:"actual_temperature,omitempty"`
}

type regionInfo struct {
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Lat   *float64 `json:"lat,omitempty"`
	Lon   *float64 `json:"lon,omitempty"`
}

type forecastResponse struct {
	Model       string        `json:"model"`
	Region      domain.Region `json:"region"`
	Year        int           `json:"year"`
	Month       string        `json:"month"`
	Day         int           `json:"day"`
	Title       string        `json:"title"`
	Points      []point       `json:"points"`
	RMSE        scoring.Score `json:"rmse"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type comparisonEntry struct {
	Model  string        `json:"model"`
	Points []point       `json:"points"`
	RMSE   scoring.Score `json:"rmse"`
}

type comparisonResponse struct {
	Region         domain.Region     `json:"region"`
	Year           int               `json:"year"`
	Month          string            `json:"month"`
	Day            int               `json:"day"`
	PredictionOnly bool              `json:"prediction_only"`
	Models         []comparisonEntry `json:"models"`
	GeneratedAt    time.Time         `json:"generated_at"`
}

type rmseRow struct {
	Model  string                          `json:"model"`
	Scores map[domain.Region]scoring.Score `json:"scores"`
}

type rmseResponse struct {
	Year        int             `json:"year"`
	Source      string          `json:"source"`
	Regions     []domain.Region `json:"regions"`
	Rows        []rmseRow       `json:"rows"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	models := s.svc.Models()
	body := map[string]any{"models": models}
	if len(models) == 0 {
		body["message"] = "no models available"
	}
	sharedobs.WriteJSON(w, http.StatusOK, body)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	out := make([]regionInfo, 0, len(domain.Regions()))
	for _, region := range domain.Regions() {
		info := regionInfo{Name: region.String(), Title: region.Title()}
		if s.locator != nil {
			if res, ok := s.locator.Locate(r.Context(), region); ok {
				info.Lat, info.Lon = &res.Lat, &res.Lon
			}
		}
		out = append(out, info)
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"regions": out})
}

func (s *Server) handleMonths(w http.ResponseWriter, _ *http.Request) {
	type month struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	out := make([]month, 0, 12)
	for _, m := range domain.Months() {
		out = append(out, month{Key: m.Key(), Name: m.Name()})
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"months": out})
}

func (s *Server) handleYears(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.years)
}

func (s *Server) handleDays(w http.ResponseWriter, r *http.Request) {
	p := params{r: r, defaultYear: s.years.Forecast}
	model := p.model()
	region := p.region()
	year := p.year()
	month := p.month()
	if p.err != nil {
		s.writeError(w, p.err)
		return
	}

	days, err := s.svc.AvailableDays(r.Context(), model, region, year, month)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"model":  model,
		"region": region,
		"year":   year,
		"month":  month.Key(),
		"days":   days,
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	p := params{r: r, defaultYear: s.years.Forecast}
	q := query.DayQuery{
		Model:  p.model(),
		Region: p.region(),
		Year:   p.year(),
		Month:  p.month(),
		Day:    p.day(),
	}
	showActual := p.flag("actual")
	if p.err != nil {
		s.writeError(w, p.err)
		return
	}

	slice, err := s.svc.DailyForecast(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	score := scoring.RMSE(slice)
	if !showActual {
		slice = series.WithoutActuals(slice)
	}

	sharedobs.WriteJSON(w, http.StatusOK, forecastResponse{
		Model:       q.Model,
		Region:      q.Region,
		Year:        q.Year,
		Month:       q.Month.Key(),
		Day:         q.Day,
		Title:       fmt.Sprintf("%s - %s on %s %d, %d", strings.ToUpper(q.Model), q.Region.Title(), q.Month.Name(), q.Day, q.Year),
		Points:      toPoints(slice),
		RMSE:        score,
		GeneratedAt: domain.Now().UTC(),
	})
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	p := params{r: r, defaultYear: s.years.Forecast}
	region := p.region()
	year := p.year()
	month := p.month()
	day := p.day()
	if p.err != nil {
		s.writeError(w, p.err)
		return
	}

	results, err := s.svc.ComparisonForDay(r.Context(), region, year, month, day)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := comparisonResponse{
		Region:         region,
		Year:           year,
		Month:          month.Key(),
		Day:            day,
		PredictionOnly: true,
		Models:         make([]comparisonEntry, 0, len(results)),
		GeneratedAt:    domain.Now().UTC(),
	}
	for _, c := range results {
		if c.RMSE.Valid {
			resp.PredictionOnly = false
		}
		resp.Models = append(resp.Models, comparisonEntry{Model: c.Model, Points: toPoints(c.Slice), RMSE: c.RMSE})
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRMSE(w http.ResponseWriter, r *http.Request) {
	p := params{r: r, defaultYear: s.years.Forecast}
	year := p.year()
	source := r.URL.Query().Get("source")
	if source == "" {
		source = "metrics"
	}
	if p.err != nil {
		s.writeError(w, p.err)
		return
	}

	var (
		table query.Table
		err   error
	)
	switch source {
	case "metrics":
		table, err = s.svc.RMSETable(r.Context(), year)
	case "raw":
		table, err = s.svc.RawRMSETable(r.Context(), year)
	default:
		err = fmt.Errorf("%w: source must be metrics or raw", errBadRequest)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, rmseResponse{
		Year:        year,
		Source:      source,
		Regions:     domain.Regions(),
		Rows:        toRMSERows(table),
		GeneratedAt: domain.Now().UTC(),
	})
}

// toRMSERows keeps every region column; regions without a value are null.
func toRMSERows(table query.Table) []rmseRow {
	models := table.Models()
	rows := make([]rmseRow, 0, len(models))
	for _, model := range models {
		scores := make(map[domain.Region]scoring.Score, len(domain.Regions()))
		for _, region := range domain.Regions() {
			if v, ok := table[model][region]; ok {
				scores[region] = scoring.Of(v)
			} else {
				scores[region] = scoring.Absent
			}
		}
		rows = append(rows, rmseRow{Model: model, Scores: scores})
	}
	return rows
}

// toPoints renders records in hour order for charting.
func toPoints(s domain.Series) []point {
	s = series.SortByHour(s)
	out := make([]point, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, point{Hour: r.Hour, Timestamp: r.Timestamp, Predicted: r.Predicted, Actual: r.Actual})
	}
	return out
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, code, msg := http.StatusInternalServerError, "internal", "internal error"
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidRegion),
		errors.Is(err, domain.ErrInvalidMonth),
		errors.Is(err, domain.ErrUnknownModel):
		status, code, msg = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, domain.ErrEmptyResult):
		status, code, msg = http.StatusNotFound, "no_data", "No data for this period."
	case errors.Is(err, domain.ErrNotFound):
		status, code, msg = http.StatusNotFound, "not_found", "Data not available."
	case errors.Is(err, domain.ErrSchema), errors.Is(err, domain.ErrParse):
		status, code, msg = http.StatusUnprocessableEntity, "bad_data", err.Error()
	default:
		s.logger.Error("query failed", "error", err)
	}
	sharedobs.WriteJSON(w, status, errorResponse{Code: code, Message: msg})
}

// params reads query parameters, keeping the first error.
type params struct {
	r           *http.Request
	defaultYear int
	err         error
}

func (p *params) get(name string) string {
	return strings.TrimSpace(p.r.URL.Query().Get(name))
}

func (p *params) fail(format string, args ...any) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
	}
}

func (p *params) model() string {
	m := p.get("model")
	if m == "" {
		p.fail("model is required")
	}
	return m
}

func (p *params) region() domain.Region {
	r, err := domain.ParseRegion(p.get("region"))
	if err != nil && p.err == nil {
		p.err = err
	}
	return r
}

func (p *params) year() int {
	s := p.get("year")
	if s == "" {
		return p.defaultYear
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		p.fail("year %q is not a number", s)
	}
	return y
}

func (p *params) month() domain.Month {
	m, err := domain.ParseMonth(p.get("month"))
	if err != nil && p.err == nil {
		p.err = err
	}
	return m
}

func (p *params) day() int {
	s := p.get("day")
	d, err := strconv.Atoi(s)
	if err != nil {
		p.fail("day %q is not a number", s)
	}
	return d
}

func (p *params) flag(name string) bool {
	v, err := strconv.ParseBool(p.get(name))
	return err == nil && v
}
