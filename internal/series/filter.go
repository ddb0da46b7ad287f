package series

import (
	"sort"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
)

// FilterByMonth keeps records whose date falls in month. No match yields an
// empty series, not an error.
func FilterByMonth(s domain.Series, month domain.Month) domain.Series {
	return filter(s, func(r domain.ForecastRecord) bool {
		return r.Timestamp.Month() == time.Month(month)
	})
}

// FilterByDay keeps records dated on the given month and day.
func FilterByDay(s domain.Series, month domain.Month, day int) domain.Series {
	return filter(s, func(r domain.ForecastRecord) bool {
		return r.Timestamp.Month() == time.Month(month) && r.Timestamp.Day() == day
	})
}

// Days returns the sorted distinct days of month present in s.
func Days(s domain.Series, month domain.Month) []int {
	seen := make(map[int]struct{})
	for _, r := range s.Records {
		if r.Timestamp.Month() == time.Month(month) {
			seen[r.Timestamp.Day()] = struct{}{}
		}
	}
	days := make([]int, 0, len(seen))
	for d := range seen {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// SortByHour returns a copy of s ordered by timestamp, stable for equal times.
func SortByHour(s domain.Series) domain.Series {
	records := make([]domain.ForecastRecord, len(s.Records))
	copy(records, s.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return domain.Series{Key: s.Key, Records: records}
}

// WithoutActuals returns a copy of s with observed values stripped, for views
// where the actual overlay is switched off.
func WithoutActuals(s domain.Series) domain.Series {
	records := make([]domain.ForecastRecord, len(s.Records))
	for i, r := range s.Records {
		r.Actual = nil
		records[i] = r
	}
	return domain.Series{Key: s.Key, Records: records}
}

func filter(s domain.Series, keep func(domain.ForecastRecord) bool) domain.Series {
	out := make([]domain.ForecastRecord, 0)
	for _, r := range s.Records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return domain.Series{Key: s.Key, Records: out}
}
