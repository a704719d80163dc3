package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wems/internal/domain"
)

type countingGeocoder struct {
	calls  int
	places []string
	result domain.GeocodingResult
	err    error
}

func (g *countingGeocoder) ForwardGeocode(_ context.Context, place string) (domain.GeocodingResult, error) {
	g.calls++
	g.places = append(g.places, place)
	return g.result, g.err
}

var denver = domain.GeocodingResult{Lat: 39.7392, Lon: -104.9903, PlaceName: "Denver", FormattedAddress: "Denver, Colorado, United States"}

func TestCachedGeocoder_NormalizedKeysShareEntry(t *testing.T) {
	inner := &countingGeocoder{result: denver}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	for _, place := range []string{"Denver, CO", "  denver,   co ", "DENVER, CO"} {
		got, err := cached.ForwardGeocode(context.Background(), place)
		require.NoError(t, err)
		assert.Equal(t, denver, got)
	}

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, []string{"Denver, CO"}, inner.places, "inner sees the caller's spelling")
}

func TestCachedGeocoder_DistinctPlacesMiss(t *testing.T) {
	inner := &countingGeocoder{result: denver}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Denver")
	_, _ = cached.ForwardGeocode(context.Background(), "Boulder")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_FailuresNotCached(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", domain.ErrPlaceNotFound},
		{"upstream error", errors.New("rate limited")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &countingGeocoder{err: tt.err}
			cached := NewCachedGeocoder(inner, 10, testMetrics())

			for range 2 {
				_, err := cached.ForwardGeocode(context.Background(), "Atlantis")
				require.ErrorIs(t, err, tt.err)
			}
			assert.Equal(t, 2, inner.calls)
		})
	}
}

func TestCachedGeocoder_EvictsLeastRecent(t *testing.T) {
	inner := &countingGeocoder{result: denver}
	cached := NewCachedGeocoder(inner, 1, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Denver")
	_, _ = cached.ForwardGeocode(context.Background(), "Boulder")
	_, _ = cached.ForwardGeocode(context.Background(), "Denver")

	assert.Equal(t, 3, inner.calls)
}
