//go:build mapbox

package mapbox

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wems/internal/domain"
)

// Live lookups against Mapbox. Requires MAPBOX_TOKEN.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func liveClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Skip("MAPBOX_TOKEN not set")
	}
	return NewClient(token, 10*time.Second, testMetrics(), slog.Default())
}

func TestLive_HazardPlaces(t *testing.T) {
	c := liveClient(t)

	tests := []struct {
		place    string
		lat, lon float64
	}{
		{"Ridgecrest, CA", 35.62, -117.67},
		{"Hilo, Hawaii", 19.72, -155.08},
		{"Anchorage, Alaska", 61.22, -149.90},
		{"Denver, Colorado", 39.74, -104.99},
	}
	for _, tt := range tests {
		t.Run(tt.place, func(t *testing.T) {
			got, err := c.ForwardGeocode(context.Background(), tt.place)
			require.NoError(t, err)
			assert.InDelta(t, tt.lat, got.Lat, 0.3)
			assert.InDelta(t, tt.lon, got.Lon, 0.3)
			assert.GreaterOrEqual(t, got.Confidence, MinRelevance)
		})
	}
}

func TestLive_Gibberish(t *testing.T) {
	c := liveClient(t)

	_, err := c.ForwardGeocode(context.Background(), "qqxjzv wplkmnrt")
	assert.ErrorIs(t, err, domain.ErrPlaceNotFound)
}
