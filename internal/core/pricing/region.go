package pricing

import (
	"context"
	"strings"
	"time"

	"fridge-recipes/internal/pkg/common"
	"fridge-recipes/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Coordinates is an optional user location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinates returns nil unless both values are present.
func NewCoordinates(lat, lon *float64) *Coordinates {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinates{Latitude: *lat, Longitude: *lon}
}

// Geocoder reverse-geocodes a point to an ISO-3166 alpha-2 country code.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// RegionResolver turns coordinates into a country code for pricing.
// Resolution never fails; every problem degrades to DefaultKey.
type RegionResolver struct {
	geocoder Geocoder
}

// NewRegionResolver creates a resolver. A nil geocoder always yields DefaultKey.
func NewRegionResolver(geocoder Geocoder) *RegionResolver {
	return &RegionResolver{geocoder: geocoder}
}

// Resolve returns the uppercased country code for coords, or DefaultKey.
func (r *RegionResolver) Resolve(ctx context.Context, coords *Coordinates) string {
	if coords == nil {
		metrics.RegionFallbacks.WithLabelValues("no_coordinates").Inc()
		return DefaultKey
	}
	if r == nil || r.geocoder == nil {
		metrics.RegionFallbacks.WithLabelValues("no_geocoder").Inc()
		return DefaultKey
	}

	start := time.Now()
	code, err := r.geocoder.ReverseGeocode(ctx, coords.Latitude, coords.Longitude)
	metrics.ObserveUpstream("geocoder", start, err)
	if err != nil {
		common.LogWarn("Reverse geocoding failed, using default region",
			zap.Error(err),
			zap.Float64("latitude", coords.Latitude),
			zap.Float64("longitude", coords.Longitude),
		)
		metrics.RegionFallbacks.WithLabelValues("geocoder_error").Inc()
		return DefaultKey
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		common.LogWarn("Reverse geocoding returned no country code, using default region",
			zap.Float64("latitude", coords.Latitude),
			zap.Float64("longitude", coords.Longitude),
		)
		metrics.RegionFallbacks.WithLabelValues("empty_country").Inc()
		return DefaultKey
	}
	return code
}
