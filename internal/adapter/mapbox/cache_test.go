package mapbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	forwardCalls int
	queries      []string
	result       domain.GeocodingResult
	err          error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, query string) (domain.GeocodingResult, error) {
	m.forwardCalls++
	m.queries = append(m.queries, query)
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_ForwardCacheHit(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 23.0, Lon: 72.5, PlaceName: "Bopal", FormattedAddress: "Bopal, Ahmedabad"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	r1, err := cached.ForwardGeocode(context.Background(), "Bopal, Ahmedabad, Gujarat")
	require.NoError(t, err)
	assert.Equal(t, "Bopal", r1.PlaceName)

	r2, err := cached.ForwardGeocode(context.Background(), "  bopal, ahmedabad, gujarat ")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.forwardCalls, "should only call inner once")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")), 0)
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{PlaceName: "Place", FormattedAddress: "Place, Ahmedabad"},
	}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Bopal")
	_, _ = cached.ForwardGeocode(context.Background(), "Vastral")

	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")
	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.forwardCalls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("upstream down")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "Bopal")
	require.Error(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Bopal")
	require.Error(t, err)

	assert.Equal(t, 2, inner.forwardCalls)
}

// --- RegionLocator tests ---

func TestRegionLocator_Locate(t *testing.T) {
	inner := &countingGeocoder{
		result: domain.GeocodingResult{Lat: 23.1, Lon: 72.6, FormattedAddress: "Chandkheda, Ahmedabad"},
	}
	loc := NewRegionLocator(inner, slog.New(slog.NewTextHandler(io.Discard, nil)))

	res, ok := loc.Locate(context.Background(), domain.Chandkheda)
	require.True(t, ok)
	assert.InDelta(t, 23.1, res.Lat, 1e-9)
	assert.Equal(t, []string{"Chandkheda, Ahmedabad, Gujarat"}, inner.queries)
}

func TestRegionLocator_FailuresDegrade(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, ok := NewRegionLocator(&countingGeocoder{err: errors.New("boom")}, logger).Locate(context.Background(), domain.Bopal)
	assert.False(t, ok)

	_, ok = NewRegionLocator(&countingGeocoder{}, logger).Locate(context.Background(), domain.Bopal)
	assert.False(t, ok)
}
