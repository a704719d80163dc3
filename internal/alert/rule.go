// Package alert holds the per-category alert rules and the dispatcher that
// turns qualifying events into best-effort webhook notifications.
package alert

import (
	"maps"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// Rule is one category's alert configuration. Besides "enabled" and
// "webhook" every key is category specific; unknown keys are kept verbatim.
type Rule map[string]any

// Enabled reports the "enabled" key, defaulting to true when absent.
func (r Rule) Enabled() bool {
	v, ok := r["enabled"]
	if !ok || v == nil {
		return true
	}
	return domain.Record(r).Bool("enabled")
}

// Webhook returns the configured URL, or "".
func (r Rule) Webhook() string {
	return domain.Record(r).String("webhook")
}

// Float returns the numeric threshold at key, or def.
func (r Rule) Float(key string, def float64) float64 {
	return domain.Record(r).FloatOr(key, def)
}

// Strings returns the list at key, or def when absent.
func (r Rule) Strings(key string, def []string) []string {
	if _, ok := r[key]; !ok {
		return def
	}
	return domain.Record(r).Strings(key)
}

// String returns the value at key, or def when empty.
func (r Rule) String(key, def string) string {
	if s := domain.Record(r).String(key); s != "" {
		return s
	}
	return def
}

func (r Rule) clone() Rule {
	return maps.Clone(r)
}

// containsFold reports whether list holds v, ignoring case.
func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// DefaultRules is the table used when no configuration file exists. Every
// entry repeats the threshold its trigger falls back to, so listing the
// rules shows the effective values.
func DefaultRules() map[domain.Category]Rule {
	return map[domain.Category]Rule{
		domain.Earthquake:     {"min_magnitude": 6.0},
		domain.Solar:          {"min_kp_index": 7.0},
		domain.Volcano:        {"alert_levels": []string{"WARNING", "WATCH"}},
		domain.Tsunami:        {"enabled": true},
		domain.SpaceWeather:   {"min_scale": 3.0},
		domain.SevereWeather:  {"severities": []string{"extreme", "severe"}},
		domain.Flood:          {"stages": []string{"major"}},
		domain.Hurricane:      {"enabled": true},
		domain.Wildfire:       {"enabled": true},
		domain.AirQuality:     {"categories": []string{"unhealthy", "very_unhealthy", "hazardous"}},
		domain.Drought:        {"min_category": "D3"},
		domain.ThreatAdvisory: {"threat_levels": []string{"imminent"}, "min_travel_level": 4.0},
	}
}
