package tier

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimitsFor_ResolvesTier(t *testing.T) {
	tests := []struct {
		input string
		want  Name
	}{
		{"free", Free},
		{"premium", Premium},
		{" Premium ", Premium},
		{"", Free},
		{"enterprise", Free},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, LimitsFor(tt.input).Name())
		})
	}
}

func TestPolicy_EveryDimensionInEveryTier(t *testing.T) {
	for dim := range table[Free] {
		_, ok := table[Premium][dim]
		assert.True(t, ok, "premium is missing %s", dim)
	}
	for dim := range table[Premium] {
		_, ok := table[Free][dim]
		assert.True(t, ok, "free is missing %s", dim)
	}
}

func TestPolicy_Accessors(t *testing.T) {
	free := LimitsFor("free")
	premium := LimitsFor("premium")

	assert.InDelta(t, 4.5, free.Floor(EarthquakeMinMagnitude), 1e-9)
	assert.True(t, math.IsInf(premium.Floor(EarthquakeMinMagnitude), -1))

	assert.Equal(t, 5, free.Cap(EarthquakeMaxResults))
	assert.Equal(t, 25, premium.Cap(EarthquakeMaxResults))
	assert.Equal(t, 3, free.Cap(HurricaneMaxResults))

	assert.InDelta(t, 24.0, free.Ceiling(SpaceAlertsHoursBack), 1e-9)
	assert.InDelta(t, 168.0, premium.Ceiling(SpaceAlertsHoursBack), 1e-9)

	assert.Equal(t, 24*time.Hour, free.Window(TsunamiLookback))

	assert.False(t, free.Allows(FloodRiverGauges))
	assert.True(t, premium.Allows(FloodRiverGauges))

	assert.Equal(t, []string{"pm25", "o3"}, free.Allowed(AirQualityParameters))
	assert.Nil(t, premium.Allowed(AirQualityCountry), "wildcard set is unrestricted")
}

func TestPolicy_AllowsValue(t *testing.T) {
	free := LimitsFor("free")
	premium := LimitsFor("premium")

	assert.True(t, free.AllowsValue(AirQualityCountry, "us"))
	assert.False(t, free.AllowsValue(AirQualityCountry, "DE"))
	assert.True(t, premium.AllowsValue(AirQualityCountry, "DE"))
	assert.False(t, free.AllowsValue(EarthquakeTimePeriod, "week"))
	assert.True(t, premium.AllowsValue(EarthquakeTimePeriod, "week"))
	assert.True(t, free.AllowsValue(VolcanoAlertLevels, "advisory"))
	assert.True(t, free.AllowsValue(TsunamiRegions, "indian"))
}

func TestPolicy_MissingDimensionIsMostRestrictive(t *testing.T) {
	p := LimitsFor("premium")
	unknown := Dimension("nope")

	assert.True(t, math.IsInf(p.Floor(unknown), 1))
	assert.Zero(t, p.Ceiling(unknown))
	assert.Zero(t, p.Cap(unknown))
	assert.Zero(t, p.Window(unknown))
	assert.False(t, p.Allows(unknown))
	assert.False(t, p.AllowsValue(unknown, "x"))
}
