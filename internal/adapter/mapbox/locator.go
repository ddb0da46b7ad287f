package mapbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
)

// RegionLocator resolves canonical regions to coordinates. Lookup failures
// are logged and reported as "not located"; they never fail a request.
type RegionLocator struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewRegionLocator creates a locator backed by geocoder.
func NewRegionLocator(geocoder domain.Geocoder, logger *slog.Logger) *RegionLocator {
	return &RegionLocator{geocoder: geocoder, logger: logger}
}

// RegionQuery is the free-text query sent for a region.
func RegionQuery(r domain.Region) string {
	return fmt.Sprintf("%s, Ahmedabad, Gujarat", r.Title())
}

// Locate returns the region's coordinates, or false if they are unknown.
func (l *RegionLocator) Locate(ctx context.Context, r domain.Region) (domain.GeocodingResult, bool) {
	result, err := l.geocoder.ForwardGeocode(ctx, RegionQuery(r))
	if err != nil {
		l.logger.Warn("geocode region failed", "region", r, "error", err)
		return domain.GeocodingResult{}, false
	}
	if result.FormattedAddress == "" {
		l.logger.Debug("geocode region returned no match", "region", r)
		return domain.GeocodingResult{}, false
	}
	return result, true
}
