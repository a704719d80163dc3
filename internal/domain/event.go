package domain

import (
	"context"
	"errors"
	"time"
)

// Category names a hazard family. It is also the key of the alert-rule table.
type Category string

const (
	Earthquake     Category = "earthquake"
	Solar          Category = "solar"
	SpaceWeather   Category = "space_weather"
	Volcano        Category = "volcano"
	Tsunami        Category = "tsunami"
	Hurricane      Category = "hurricane"
	Wildfire       Category = "wildfire"
	SevereWeather  Category = "severe_weather"
	Flood          Category = "flood"
	AirQuality     Category = "air_quality"
	Drought        Category = "drought"
	ThreatAdvisory Category = "threat_advisory"
)

// Categories returns every category in a stable order.
func Categories() []Category {
	return []Category{
		Earthquake, Solar, SpaceWeather, Volcano, Tsunami, Hurricane,
		Wildfire, SevereWeather, Flood, AirQuality, Drought, ThreatAdvisory,
	}
}

// Event is a normalized hazard occurrence. Lower SeverityRank is more severe.
type Event struct {
	ID           string    `json:"id"`
	Category     Category  `json:"category"`
	SeverityRank int       `json:"severity_rank"`
	Class        string    `json:"class"`
	AlertLevel   string    `json:"alert_level"`
	Location     string    `json:"location,omitempty"`
	OccurredAt   time.Time `json:"occurred_at,omitzero"`
	SourceKind   string    `json:"source_kind,omitempty"`

	// Payload carries the source-specific fields the renderer and the alert
	// triggers read.
	Payload Record `json:"payload,omitempty"`
}

// HasTime reports whether the source supplied a parseable timestamp.
func (e Event) HasTime() bool { return !e.OccurredAt.IsZero() }

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// ErrPlaceNotFound is returned by a Geocoder with no confident match.
var ErrPlaceNotFound = errors.New("place not found")

// Geocoder resolves a free-text place name to coordinates. It backs the
// "near" parameter of radius searches and air-quality city lookups.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, place string) (GeocodingResult, error)
}
