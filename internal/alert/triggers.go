package alert

import (
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// Trigger decides whether e crosses the threshold in rule and, if so,
// returns the category-specific payload fields including "alert_level".
type Trigger func(rule Rule, e domain.Event) (map[string]any, bool)

var triggers = map[domain.Category]Trigger{
	domain.Earthquake:     earthquakeTrigger,
	domain.Solar:          solarTrigger,
	domain.SpaceWeather:   spaceWeatherTrigger,
	domain.Volcano:        volcanoTrigger,
	domain.Tsunami:        tsunamiTrigger,
	domain.Hurricane:      hurricaneTrigger,
	domain.Wildfire:       wildfireTrigger,
	domain.SevereWeather:  severeWeatherTrigger,
	domain.Flood:          floodTrigger,
	domain.AirQuality:     airQualityTrigger,
	domain.Drought:        droughtTrigger,
	domain.ThreatAdvisory: threatTrigger,
}

func earthquakeTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	mag, ok := e.Payload.Float("magnitude")
	if !ok || mag < rule.Float("min_magnitude", 6.0) {
		return nil, false
	}
	level := domain.LevelWarning
	if mag >= 7.0 {
		level = domain.LevelMajor
	}
	return map[string]any{
		"magnitude":   mag,
		"location":    e.Location,
		"alert_level": level,
	}, true
}

// Only K-index readings fire; SWPC event records carry no kp_index.
func solarTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	kp, ok := e.Payload.Float("kp_index")
	if !ok || kp < rule.Float("min_kp_index", 7.0) {
		return nil, false
	}
	level := domain.LevelWarning
	if kp >= 8.0 {
		level = domain.LevelSevere
	}
	return map[string]any{
		"k_index":     kp,
		"level":       e.Class,
		"alert_level": level,
	}, true
}

func spaceWeatherTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	scale, ok := e.Payload.Float("scale")
	if !ok || scale < rule.Float("min_scale", 3) {
		return nil, false
	}
	level := domain.LevelWarning
	if scale >= 4 {
		level = domain.LevelSevere
	}
	return map[string]any{
		"scale":       e.Payload.String("scale_label"),
		"alert_type":  e.Payload.String("title"),
		"alert_level": level,
	}, true
}

// Level membership is case sensitive.
func volcanoTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	lvl := e.Payload.String("alert_level")
	if !slices.Contains(rule.Strings("alert_levels", []string{"WARNING", "WATCH"}), lvl) {
		return nil, false
	}
	severity := domain.LevelWarning
	if lvl == "WARNING" {
		severity = domain.LevelCritical
	}
	return map[string]any{
		"volcano_name": e.Payload.String("name"),
		"alert_level":  strings.ToLower(lvl),
		"severity":     severity,
	}, true
}

func tsunamiTrigger(_ Rule, e domain.Event) (map[string]any, bool) {
	return map[string]any{
		"location":    e.Location,
		"magnitude":   e.Payload.String("magnitude"),
		"alert_level": domain.LevelCritical,
	}, true
}

// Hurricanes and tropical storms fire; depressions and NWS products do not.
func hurricaneTrigger(_ Rule, e domain.Event) (map[string]any, bool) {
	var level string
	switch {
	case strings.HasPrefix(e.Class, "Category"):
		level = domain.LevelCritical
	case e.Class == "Tropical Storm":
		level = domain.LevelWarning
	default:
		return nil, false
	}
	return map[string]any{
		"storm_name":  e.Payload.String("name"),
		"intensity":   e.Class,
		"alert_level": level,
	}, true
}

func wildfireTrigger(_ Rule, e domain.Event) (map[string]any, bool) {
	severity := e.Payload.String("severity")
	var level string
	switch strings.ToLower(severity) {
	case "extreme":
		level = domain.LevelCritical
	case "severe":
		level = domain.LevelWarning
	default:
		return nil, false
	}
	return map[string]any{
		"alert_type":  e.Payload.String("event"),
		"severity":    severity,
		"location":    e.Location,
		"alert_level": level,
	}, true
}

func severeWeatherTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	severity := e.Payload.String("severity")
	if !containsFold(rule.Strings("severities", []string{"extreme", "severe"}), severity) {
		return nil, false
	}
	return map[string]any{
		"weather_event": e.Payload.String("event"),
		"severity":      severity,
		"location":      e.Location,
		"alert_level":   e.AlertLevel,
	}, true
}

func floodTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	if !containsFold(rule.Strings("stages", []string{"major"}), e.Class) {
		return nil, false
	}
	level := domain.LevelWarning
	if e.Class == "major" {
		level = domain.LevelCritical
	}
	name := e.Payload.String("event")
	if name == "" {
		name = e.Payload.String("name")
	}
	return map[string]any{
		"flood_event": name,
		"stage":       e.Class,
		"location":    e.Location,
		"alert_level": level,
	}, true
}

func airQualityTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	defaults := []string{"unhealthy", "very_unhealthy", "hazardous"}
	if !containsFold(rule.Strings("categories", defaults), e.Class) {
		return nil, false
	}
	aqi, _ := e.Payload.Float("aqi")
	return map[string]any{
		"station":     e.Location,
		"parameter":   e.Payload.String("parameter"),
		"aqi":         aqi,
		"category":    e.Class,
		"alert_level": e.AlertLevel,
	}, true
}

func droughtTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	worst, ok := droughtLevel(e.Class)
	if !ok {
		return nil, false
	}
	threshold, ok := droughtLevel(rule.String("min_category", "D3"))
	if !ok || worst < threshold {
		return nil, false
	}
	level := domain.LevelWarning
	if worst == 4 {
		level = domain.LevelCritical
	}
	return map[string]any{
		"state":       e.Payload.String("state"),
		"category":    e.Class,
		"alert_level": level,
	}, true
}

// droughtLevel parses "D0".."D4".
func droughtLevel(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "D") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 || n > 4 {
		return 0, false
	}
	return n, true
}

func threatTrigger(rule Rule, e domain.Event) (map[string]any, bool) {
	fired := false
	if ntas := strings.ToLower(e.Payload.String("ntas_type")); ntas != "" {
		for _, lvl := range rule.Strings("threat_levels", []string{"imminent"}) {
			if lvl != "" && strings.Contains(ntas, strings.ToLower(lvl)) {
				fired = true
				break
			}
		}
	}
	if lvl, ok := e.Payload.Float("travel_level"); ok && lvl >= rule.Float("min_travel_level", 4) {
		fired = true
	}
	if !fired {
		return nil, false
	}
	return map[string]any{
		"threat_level": e.Class,
		"source":       e.SourceKind,
		"title":        e.Payload.String("title"),
		"alert_level":  domain.LevelCritical,
	}, true
}
