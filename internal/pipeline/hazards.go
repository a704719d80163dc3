// Package pipeline implements the hazard checks. Each check gates the
// caller's parameters against the tier, fetches its feeds, ranks the
// normalized events, hands the surfaced page to the alert dispatcher and
// renders the report.
package pipeline

import "context"

// Hazard names a check operation.
type Hazard string

const (
	Earthquakes        Hazard = "earthquakes"
	Solar              Hazard = "solar"
	SpaceWeatherAlerts Hazard = "space_weather_alerts"
	Volcanoes          Hazard = "volcanoes"
	Tsunamis           Hazard = "tsunamis"
	Hurricanes         Hazard = "hurricanes"
	Wildfires          Hazard = "wildfires"
	SevereWeather      Hazard = "severe_weather"
	Floods             Hazard = "floods"
	AirQuality         Hazard = "air_quality"
	Drought            Hazard = "drought"
	ThreatAdvisories   Hazard = "threat_advisories"
	ConfigureAlerts    Hazard = "configure_alerts"
)

type check struct {
	// subject names the hazard in failure messages.
	subject string
	run     func(p *Pipeline, ctx context.Context, c *call) string
}

var checks = map[Hazard]check{
	Earthquakes:        {"earthquake", (*Pipeline).earthquakes},
	Solar:              {"solar", (*Pipeline).solar},
	SpaceWeatherAlerts: {"space weather", (*Pipeline).spaceWeatherAlerts},
	Volcanoes:          {"volcano", (*Pipeline).volcanoes},
	Tsunamis:           {"tsunami", (*Pipeline).tsunamis},
	Hurricanes:         {"hurricane", (*Pipeline).hurricanes},
	Wildfires:          {"wildfire", (*Pipeline).wildfires},
	SevereWeather:      {"severe weather", (*Pipeline).severeWeather},
	Floods:             {"flood", (*Pipeline).floods},
	AirQuality:         {"air quality", (*Pipeline).airQuality},
	Drought:            {"drought", (*Pipeline).drought},
	ThreatAdvisories:   {"threat advisory", (*Pipeline).threatAdvisories},
	ConfigureAlerts:    {"alert configuration", (*Pipeline).configureAlerts},
}

// Hazards lists every check in a stable order.
func Hazards() []Hazard {
	return []Hazard{
		Earthquakes, Solar, SpaceWeatherAlerts, Volcanoes, Tsunamis, Hurricanes,
		Wildfires, SevereWeather, Floods, AirQuality, Drought, ThreatAdvisories,
		ConfigureAlerts,
	}
}
