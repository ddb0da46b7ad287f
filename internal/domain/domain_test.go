package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in   string
		want Region
	}{
		{"bopal", Bopal},
		{"Bopal", Bopal},
		{"  VASTRAL ", Vastral},
		{"Rakhiyal ", Rakhiyal},
	}
	for _, tt := range tests {
		got, err := ParseRegion(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRegion("paldi")
	assert.ErrorIs(t, err, ErrInvalidRegion)
	_, err = ParseRegion("")
	assert.ErrorIs(t, err, ErrInvalidRegion)
}

func TestRegions_CanonicalOrderAndCopy(t *testing.T) {
	got := Regions()
	assert.Equal(t, []Region{Rakhiyal, Bopal, Ambawadi, Chandkheda, Vastral}, got)

	got[0] = "mutated"
	assert.Equal(t, Rakhiyal, Regions()[0])
}

func TestRegion_Title(t *testing.T) {
	assert.Equal(t, "Chandkheda", Chandkheda.Title())
	assert.Empty(t, Region("").Title())
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want Month
	}{
		{"06", 6},
		{"6", 6},
		{"June", 6},
		{"jun", 6},
		{"DECEMBER", 12},
		{" 01 ", 1},
	}
	for _, tt := range tests {
		got, err := ParseMonth(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "0", "13", "ju", "juneteenth"} {
		_, err := ParseMonth(bad)
		assert.ErrorIs(t, err, ErrInvalidMonth, bad)
	}
}

func TestMonth_KeyNameDays(t *testing.T) {
	assert.Equal(t, "03", Month(3).Key())
	assert.Equal(t, "March", Month(3).Name())
	assert.Equal(t, 29, Month(2).DaysIn(2024))
	assert.Equal(t, 28, Month(2).DaysIn(2025))
	assert.Len(t, Months(), 12)
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate(2024, 2, 29))
	assert.False(t, ValidDate(2025, 2, 29))
	assert.False(t, ValidDate(2024, 4, 31))
	assert.False(t, ValidDate(2024, 13, 1))
	assert.False(t, ValidDate(2024, 1, 0))
}

func TestSeriesKey_FileNames(t *testing.T) {
	k := SeriesKey{Model: "holtwinters", Region: Bopal, Year: 2024}

	assert.Equal(t, "holtwinters_bopal_2024.csv", k.FileName())
	assert.Equal(t, "holtwinters/bopal/2024", k.String())
	assert.Equal(t, "holtwinters_model_metrics_2024.csv", MetricsFileName("holtwinters", 2024))
}

func TestSeries_HasActuals(t *testing.T) {
	v := 1.0
	assert.False(t, Series{}.HasActuals())
	assert.True(t, Series{Records: []ForecastRecord{{}, {Actual: &v}}}.HasActuals())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "date", NormalizeHeader("\ufeffDate "))
	assert.Equal(t, "predicted_temperature", NormalizeHeader(" Predicted_Temperature"))
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(fixed)
	SetClock(fc)
	t.Cleanup(func() { SetClock(nil) })

	assert.Equal(t, fixed, Now())
	fc.Advance(time.Minute)
	assert.Equal(t, time.Minute, Since(fixed))
}
