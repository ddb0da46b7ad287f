//go:build mapbox

package mapbox

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, 10*time.Second, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_ForwardGeocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.ForwardGeocode(context.Background(), RegionQuery(domain.Bopal))
	require.NoError(t, err)

	assert.InDelta(t, 23.03, result.Lat, 0.2, "lat should be near Ahmedabad")
	assert.InDelta(t, 72.55, result.Lon, 0.2, "lon should be near Ahmedabad")
	assert.NotEmpty(t, result.FormattedAddress)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestSmoke_LocateAllRegions(t *testing.T) {
	c := smokeClient(t)
	loc := NewRegionLocator(NewCachedGeocoder(c, 10, observability.NewMetricsForTesting()), slog.Default())

	for _, r := range domain.Regions() {
		res, ok := loc.Locate(context.Background(), r)
		if !ok {
			t.Logf("%s: no match", r)
			continue
		}
		assert.InDelta(t, 23.03, res.Lat, 0.5, r.String())
	}
}
