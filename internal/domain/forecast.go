package domain

import (
	"fmt"
	"strings"
	"time"
)

// SeriesKey identifies one hourly series file.
type SeriesKey struct {
	Model  string
	Region Region
	Year   int
}

// FileName returns "<model>_<region>_<year>.csv".
func (k SeriesKey) FileName() string {
	return fmt.Sprintf("%s_%s_%d.csv", k.Model, k.Region, k.Year)
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Model, k.Region, k.Year)
}

// MetricsFileName returns "<model>_model_metrics_<year>.csv".
func MetricsFileName(model string, year int) string {
	return fmt.Sprintf("%s_model_metrics_%d.csv", model, year)
}

// ForecastRecord is one hourly row of a series file.
type ForecastRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Hour      int       `json:"hour"`
	Predicted float64   `json:"predicted_temperature"`
	Actual    *float64  `json:"actual_temperature,omitempty"`
}

// HasActual reports whether an observed value was recorded.
func (r ForecastRecord) HasActual() bool {
	return r.Actual != nil
}

// Series is the ordered set of records loaded from one file. Records keep
// source file order.
type Series struct {
	Key     SeriesKey        `json:"key"`
	Records []ForecastRecord `json:"records"`
}

// Len returns the number of records.
func (s Series) Len() int { return len(s.Records) }

// Empty reports whether the series holds no records.
func (s Series) Empty() bool { return len(s.Records) == 0 }

// HasActuals reports whether any record carries an observed value.
func (s Series) HasActuals() bool {
	for _, r := range s.Records {
		if r.HasActual() {
			return true
		}
	}
	return false
}

// DaySlice is a series restricted to one calendar day. It may be empty.
type DaySlice = Series

// MetricRow is one RMSE value for a model and region.
type MetricRow struct {
	Model  string  `json:"model"`
	Region Region  `json:"region"`
	Year   int     `json:"year"`
	RMSE   float64 `json:"rmse"`
	Source string  `json:"source"` // "metrics" or "raw"
}

// NormalizeHeader lower-cases and trims a CSV header cell, dropping the UTF-8
// byte order mark that spreadsheet exports put on the first column.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}
