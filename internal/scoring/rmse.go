// Package scoring computes forecast accuracy, either from raw hourly series or
// from precomputed per-region metrics files. The two sources are independent
// and never reconciled; callers choose one per view.
package scoring

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
)

// Score is an RMSE value that may be absent. An absent score means RMSE is
// undefined for the slice, which is different from a perfect 0.
type Score struct {
	Value float64
	Valid bool
}

// Absent is the undefined score.
var Absent = Score{}

// Of wraps a defined value.
func Of(v float64) Score {
	return Score{Value: v, Valid: true}
}

// MarshalJSON encodes an absent score as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Absent
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Of(v)
	return nil
}

// RMSE returns sqrt(mean((actual-predicted)^2)) over the records that carry an
// observed value, rounded to 3 decimals. An empty series, or one with no
// observed values, yields Absent.
func RMSE(s domain.Series) Score {
	actual, predicted := paired(s)
	if len(actual) == 0 {
		return Absent
	}
	// Euclidean distance is sqrt(sum(diff^2)); dividing by sqrt(n) gives the RMSE.
	dist := floats.Distance(actual, predicted, 2)
	return Of(Round3(dist / math.Sqrt(float64(len(actual)))))
}

// Round3 rounds v to 3 decimal places for display.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func paired(s domain.Series) (actual, predicted []float64) {
	actual = make([]float64, 0, len(s.Records))
	predicted = make([]float64, 0, len(s.Records))
	for _, r := range s.Records {
		if r.Actual == nil {
			continue
		}
		actual = append(actual, *r.Actual)
		predicted = append(predicted, r.Predicted)
	}
	return actual, predicted
}
