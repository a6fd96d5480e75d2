package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeGeocoder struct {
	code  string
	err   error
	calls int
}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	f.calls++
	return f.code, f.err
}

func floatPtr(v float64) *float64 { return &v }

func TestRegionResolver_NoCoordinates(t *testing.T) {
	geo := &fakeGeocoder{code: "US"}
	r := NewRegionResolver(geo)

	assert.Equal(t, DefaultKey, r.Resolve(context.Background(), nil))
	assert.Equal(t, DefaultKey, r.Resolve(context.Background(), NewCoordinates(floatPtr(1), nil)))
	assert.Equal(t, 0, geo.calls, "no network call without both coordinates")
}

func TestRegionResolver_GeocoderFailureFallsBack(t *testing.T) {
	geo := &fakeGeocoder{err: errors.New("dial tcp: connection refused")}
	r := NewRegionResolver(geo)

	got := r.Resolve(context.Background(), &Coordinates{Latitude: 51.5, Longitude: -0.12})
	assert.Equal(t, DefaultKey, got)
	assert.Equal(t, 1, geo.calls)
}

func TestRegionResolver_Success(t *testing.T) {
	r := NewRegionResolver(&fakeGeocoder{code: " gb "})
	assert.Equal(t, "GB", r.Resolve(context.Background(), &Coordinates{Latitude: 51.5, Longitude: -0.12}))
}

func TestRegionResolver_EmptyCountryCode(t *testing.T) {
	r := NewRegionResolver(&fakeGeocoder{code: ""})
	assert.Equal(t, DefaultKey, r.Resolve(context.Background(), &Coordinates{Latitude: 0, Longitude: -30}))
}

func TestRegionResolver_NilGeocoder(t *testing.T) {
	r := NewRegionResolver(nil)
	assert.Equal(t, DefaultKey, r.Resolve(context.Background(), &Coordinates{Latitude: 1, Longitude: 1}))
}
