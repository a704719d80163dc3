package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/wems/internal/domain"
)

func event(c domain.Category, kind string, rec domain.Record) domain.Event {
	return domain.Normalize(c, kind, []domain.Record{rec})[0]
}

func TestTriggers(t *testing.T) {
	tests := []struct {
		name      string
		rule      Rule
		event     domain.Event
		wantFire  bool
		wantLevel string
	}{
		{
			name:      "solar severe at kp 8",
			rule:      Rule{},
			event:     event(domain.Solar, "kindex", domain.Record{"kp_index": 8.0}),
			wantFire:  true,
			wantLevel: "severe",
		},
		{
			name:      "solar warning at kp 7",
			rule:      Rule{},
			event:     event(domain.Solar, "kindex", domain.Record{"kp_index": 7.0}),
			wantFire:  true,
			wantLevel: "warning",
		},
		{
			name:     "solar event records never fire",
			rule:     Rule{"min_kp_index": 0.0},
			event:    event(domain.Solar, "event", domain.Record{"type": "FLA"}),
			wantFire: false,
		},
		{
			name:      "volcano warning lowercases level",
			rule:      Rule{},
			event:     event(domain.Volcano, "hans", domain.Record{"alert_level": "WARNING", "name": "Kilauea"}),
			wantFire:  true,
			wantLevel: "warning",
		},
		{
			name:     "volcano match is case sensitive",
			rule:     Rule{"alert_levels": []string{"WARNING"}},
			event:    event(domain.Volcano, "hans", domain.Record{"alert_level": "warning"}),
			wantFire: false,
		},
		{
			name:      "tornado warning is an emergency",
			rule:      Rule{},
			event:     event(domain.SevereWeather, "nws", domain.Record{"event": "Tornado Warning", "severity": "Severe"}),
			wantFire:  true,
			wantLevel: "emergency",
		},
		{
			name:      "extreme severity is critical",
			rule:      Rule{},
			event:     event(domain.SevereWeather, "nws", domain.Record{"event": "Blizzard Warning", "severity": "Extreme"}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:     "moderate severity excluded by default",
			rule:     Rule{},
			event:    event(domain.SevereWeather, "nws", domain.Record{"event": "Wind Advisory", "severity": "Moderate"}),
			wantFire: false,
		},
		{
			name:      "major flood is critical",
			rule:      Rule{},
			event:     event(domain.Flood, "alert", domain.Record{"event": "Flash Flood Warning"}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:     "minor flood not in default stages",
			rule:     Rule{},
			event:    event(domain.Flood, "alert", domain.Record{"event": "Flood Watch"}),
			wantFire: false,
		},
		{
			name:      "hurricane is critical",
			rule:      Rule{},
			event:     event(domain.Hurricane, "storm", domain.Record{"intensity": 100.0, "name": "Alpha"}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:      "tropical storm is a warning",
			rule:      Rule{},
			event:     event(domain.Hurricane, "storm", domain.Record{"intensity": 45.0, "name": "Beta"}),
			wantFire:  true,
			wantLevel: "warning",
		},
		{
			name:     "tropical depression never fires",
			rule:     Rule{},
			event:    event(domain.Hurricane, "storm", domain.Record{"intensity": 30.0, "name": "Gamma"}),
			wantFire: false,
		},
		{
			name:      "hazardous air",
			rule:      Rule{},
			event:     event(domain.AirQuality, "airnow", domain.Record{"aqi": 320.0}),
			wantFire:  true,
			wantLevel: "hazardous",
		},
		{
			name:     "moderate air below default categories",
			rule:     Rule{},
			event:    event(domain.AirQuality, "airnow", domain.Record{"aqi": 80.0}),
			wantFire: false,
		},
		{
			name:      "D4 drought is critical",
			rule:      Rule{},
			event:     event(domain.Drought, "usdm", domain.Record{"d4": 2.5}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:     "D2 drought below default",
			rule:     Rule{},
			event:    event(domain.Drought, "usdm", domain.Record{"d2": 10.0}),
			wantFire: false,
		},
		{
			name:      "imminent NTAS",
			rule:      Rule{},
			event:     event(domain.ThreatAdvisory, "ntas", domain.Record{"ntas_type": "Imminent Threat"}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:      "level 4 travel advisory",
			rule:      Rule{},
			event:     event(domain.ThreatAdvisory, "travel", domain.Record{"travel_level": 4.0}),
			wantFire:  true,
			wantLevel: "critical",
		},
		{
			name:     "elevated NTAS below default",
			rule:     Rule{},
			event:    event(domain.ThreatAdvisory, "ntas", domain.Record{"ntas_type": "Elevated Threat"}),
			wantFire: false,
		},
		{
			name:      "space weather strong storm",
			rule:      Rule{},
			event:     event(domain.SpaceWeather, "swpc", domain.Record{"scale": 3.0, "scale_label": "G3 - Strong"}),
			wantFire:  true,
			wantLevel: "warning",
		},
		{
			name:      "wildfire extreme",
			rule:      Rule{},
			event:     event(domain.Wildfire, "nws", domain.Record{"severity": "Extreme", "event": "Red Flag Warning"}),
			wantFire:  true,
			wantLevel: "critical",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := triggers[tt.event.Category]
			payload, fired := trigger(tt.rule, tt.event)
			assert.Equal(t, tt.wantFire, fired)
			if tt.wantFire {
				assert.Equal(t, tt.wantLevel, payload["alert_level"])
			}
		})
	}
}

func TestTriggers_VolcanoSeverity(t *testing.T) {
	payload, ok := volcanoTrigger(Rule{}, event(domain.Volcano, "hans", domain.Record{"alert_level": "WARNING", "name": "Kilauea"}))
	assert.True(t, ok)
	assert.Equal(t, "critical", payload["severity"])
	assert.Equal(t, "Kilauea", payload["volcano_name"])
}

func TestTriggers_EveryCategoryCovered(t *testing.T) {
	for _, c := range domain.Categories() {
		_, ok := triggers[c]
		assert.True(t, ok, "no trigger for %s", c)
	}
}
