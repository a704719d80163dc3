package tier

import (
	"math"
	"time"
)

// Dimension names one gated parameter of one hazard check.
type Dimension string

const (
	EarthquakeMinMagnitude Dimension = "earthquake.min_magnitude"
	EarthquakeTimePeriod   Dimension = "earthquake.time_period"
	EarthquakeGeoSearch    Dimension = "earthquake.geo_search"
	EarthquakeMaxResults   Dimension = "earthquake.max_results"

	SolarMaxEvents Dimension = "solar.max_events"
	SolarLookback  Dimension = "solar.lookback"

	SpaceAlertsHoursBack  Dimension = "space_alerts.hours_back"
	SpaceAlertsMaxResults Dimension = "space_alerts.max_results"

	VolcanoAlertLevels Dimension = "volcano.alert_levels"
	VolcanoHistorical  Dimension = "volcano.include_historical"
	VolcanoMaxResults  Dimension = "volcano.max_results"

	TsunamiRegions    Dimension = "tsunami.regions"
	TsunamiLookback   Dimension = "tsunami.lookback"
	TsunamiMaxResults Dimension = "tsunami.max_results"

	HurricaneBasin      Dimension = "hurricane.basin"
	HurricaneForecast   Dimension = "hurricane.include_forecast"
	HurricaneMaxResults Dimension = "hurricane.max_results"

	WildfireRegion         Dimension = "wildfire.region"
	WildfireLargeIncidents Dimension = "wildfire.large_incidents"
	WildfireMaxResults     Dimension = "wildfire.max_results"

	SevereState      Dimension = "severe.state"
	SevereSeverity   Dimension = "severe.severity"
	SevereLookback   Dimension = "severe.lookback"
	SevereMaxResults Dimension = "severe.max_results"

	FloodState       Dimension = "flood.state"
	FloodRiverGauges Dimension = "flood.include_river_gauges"
	FloodTimeRange   Dimension = "flood.time_range"
	FloodStages      Dimension = "flood.flood_stage"
	FloodMaxResults  Dimension = "flood.max_results"

	AirQualityCountry     Dimension = "air_quality.country"
	AirQualityParameters  Dimension = "air_quality.parameters"
	AirQualityLocalSearch Dimension = "air_quality.city_zip"
	AirQualityForecast    Dimension = "air_quality.include_forecast"
	AirQualityMaxResults  Dimension = "air_quality.max_results"

	DroughtAccess Dimension = "drought.access"

	ThreatTypes      Dimension = "threat.threat_types"
	ThreatCountries  Dimension = "threat.countries"
	ThreatRegion     Dimension = "threat.region"
	ThreatHistorical Dimension = "threat.include_historical"
	ThreatExpired    Dimension = "threat.include_expired"
	ThreatMaxResults Dimension = "threat.max_results"

	CustomAlerts Dimension = "alerts.custom"
)

func floor(v float64) Limit { return Limit{Kind: KindFloor, Number: v} }
func ceiling(v float64) Limit { return Limit{Kind: KindCeiling, Number: v} }
func capOf(n int) Limit { return Limit{Kind: KindCap, Cap: n} }
func window(d time.Duration) Limit { return Limit{Kind: KindWindow, Window: d} }
func enum(values ...string) Limit { return Limit{Kind: KindEnum, Enum: values} }
func flag(enabled bool) Limit { return Limit{Kind: KindFlag, Flag: enabled} }

const day = 24 * time.Hour

var table = map[Name]map[Dimension]Limit{
	Free: {
		EarthquakeMinMagnitude: floor(4.5),
		EarthquakeTimePeriod:   enum("hour", "day"),
		EarthquakeGeoSearch:    flag(false),
		EarthquakeMaxResults:   capOf(5),

		SolarMaxEvents: capOf(3),
		SolarLookback:  window(day),

		SpaceAlertsHoursBack:  ceiling(24),
		SpaceAlertsMaxResults: capOf(5),

		VolcanoAlertLevels: enum("NORMAL", "ADVISORY", "WATCH", "WARNING"),
		VolcanoHistorical:  flag(false),
		VolcanoMaxResults:  capOf(5),

		TsunamiRegions:    enum("pacific", "atlantic", "indian", "mediterranean"),
		TsunamiLookback:   window(day),
		TsunamiMaxResults: capOf(5),

		HurricaneBasin:      enum("atlantic"),
		HurricaneForecast:   flag(false),
		HurricaneMaxResults: capOf(3),

		WildfireRegion:         flag(false),
		WildfireLargeIncidents: flag(false),
		WildfireMaxResults:     capOf(3),

		SevereState:      flag(false),
		SevereSeverity:   enum("extreme", "severe"),
		SevereLookback:   window(day),
		SevereMaxResults: capOf(5),

		FloodState:       flag(false),
		FloodRiverGauges: flag(false),
		FloodTimeRange:   enum("day"),
		FloodStages:      enum("major"),
		FloodMaxResults:  capOf(5),

		AirQualityCountry:     enum("US"),
		AirQualityParameters:  enum("pm25", "o3"),
		AirQualityLocalSearch: flag(false),
		AirQualityForecast:    flag(false),
		AirQualityMaxResults:  capOf(5),

		DroughtAccess: flag(false),

		ThreatTypes:      enum("terrorism"),
		ThreatCountries:  flag(false),
		ThreatRegion:     flag(false),
		ThreatHistorical: flag(false),
		ThreatExpired:    flag(false),
		ThreatMaxResults: capOf(5),

		CustomAlerts: flag(false),
	},
	Premium: {
		EarthquakeMinMagnitude: floor(math.Inf(-1)),
		EarthquakeTimePeriod:   enum("hour", "day", "week", "month"),
		EarthquakeGeoSearch:    flag(true),
		EarthquakeMaxResults:   capOf(25),

		SolarMaxEvents: capOf(10),
		SolarLookback:  window(3 * day),

		SpaceAlertsHoursBack:  ceiling(168),
		SpaceAlertsMaxResults: capOf(25),

		VolcanoAlertLevels: enum("NORMAL", "ADVISORY", "WATCH", "WARNING"),
		VolcanoHistorical:  flag(true),
		VolcanoMaxResults:  capOf(25),

		TsunamiRegions:    enum("pacific", "atlantic", "indian", "mediterranean"),
		TsunamiLookback:   window(3 * day),
		TsunamiMaxResults: capOf(25),

		HurricaneBasin:      enum("atlantic", "eastern_pacific", "central_pacific"),
		HurricaneForecast:   flag(true),
		HurricaneMaxResults: capOf(25),

		WildfireRegion:         flag(true),
		WildfireLargeIncidents: flag(true),
		WildfireMaxResults:     capOf(25),

		SevereState:      flag(true),
		SevereSeverity:   enum("extreme", "severe", "moderate", "minor", "unknown"),
		SevereLookback:   window(3 * day),
		SevereMaxResults: capOf(25),

		FloodState:       flag(true),
		FloodRiverGauges: flag(true),
		FloodTimeRange:   enum("day", "week"),
		FloodStages:      enum("major", "moderate", "minor", "action"),
		FloodMaxResults:  capOf(25),

		AirQualityCountry:     enum(anyValue),
		AirQualityParameters:  enum("pm25", "pm10", "o3", "no2", "so2", "co"),
		AirQualityLocalSearch: flag(true),
		AirQualityForecast:    flag(true),
		AirQualityMaxResults:  capOf(25),

		DroughtAccess: flag(true),

		ThreatTypes:      enum("terrorism", "travel", "cyber"),
		ThreatCountries:  flag(true),
		ThreatRegion:     flag(true),
		ThreatHistorical: flag(true),
		ThreatExpired:    flag(true),
		ThreatMaxResults: capOf(25),

		CustomAlerts: flag(true),
	},
}
