package series

import (
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multiMonthCSV = `date,hour,predicted_temperature,actual_temperature
2024-01-31,23,5,6
2024-02-01,0,6,6
2024-02-01,1,7,7
2024-02-29,0,8,9
2024-03-01,0,9,9
2024-02-10,0,10,10
`

func mustParse(t *testing.T, content string) domain.Series {
	t.Helper()
	s, err := Parse(strings.NewReader(content), bopal2024)
	require.NoError(t, err)
	return s
}

func TestFilterByMonth_OnlyMatchingMonth(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	for _, m := range domain.Months() {
		got := FilterByMonth(s, m)
		for _, r := range got.Records {
			assert.Equal(t, time.Month(m), r.Timestamp.Month())
		}
	}

	feb := FilterByMonth(s, 2)
	assert.Equal(t, 4, feb.Len())
	assert.Equal(t, bopal2024, feb.Key)
}

func TestFilterByMonth_NoMatchIsEmpty(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	got := FilterByMonth(s, 7)

	assert.True(t, got.Empty())
	assert.NotNil(t, got.Records)
}

func TestFilterByDay(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	got := FilterByDay(s, 2, 1)

	require.Equal(t, 2, got.Len())
	assert.Equal(t, 0, got.Records[0].Hour)
	assert.Equal(t, 1, got.Records[1].Hour)

	assert.True(t, FilterByDay(s, 6, 31).Empty())
}

func TestDays(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	assert.Equal(t, []int{1, 10, 29}, Days(s, 2))
	assert.Empty(t, Days(s, 12))
}

func TestSortByHour(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	sorted := SortByHour(s)

	for i := 1; i < sorted.Len(); i++ {
		assert.False(t, sorted.Records[i].Timestamp.Before(sorted.Records[i-1].Timestamp))
	}
	// The input is untouched.
	assert.Equal(t, 10.0, s.Records[5].Predicted)
}

func TestWithoutActuals(t *testing.T) {
	s := mustParse(t, multiMonthCSV)

	stripped := WithoutActuals(s)

	assert.False(t, stripped.HasActuals())
	assert.True(t, s.HasActuals(), "source series keeps its actuals")
	assert.Equal(t, s.Len(), stripped.Len())
}
