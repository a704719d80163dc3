package domain

// Alert levels attached to rungs. Triggers copy them into webhook payloads.
const (
	LevelEmergency = "emergency"
	LevelCritical  = "critical"
	LevelHazardous = "hazardous"
	LevelSevere    = "severe"
	LevelMajor     = "major"
	LevelWarning   = "warning"
	LevelInfo      = "info"
)

var ladders = map[Category]Ladder{
	Earthquake: {
		{Match: FloatAtLeast("magnitude", 7.0), Rank: 0, Class: "major", Level: LevelMajor},
		{Match: FloatAtLeast("magnitude", 6.0), Rank: 1, Class: "strong", Level: LevelWarning},
		{Match: FloatAtLeast("magnitude", 5.0), Rank: 2, Class: "moderate", Level: LevelWarning},
		{Match: Always(), Rank: 3, Class: "light", Level: LevelWarning},
	},

	// K-index readings and SWPC events share one ladder; events rank after
	// every reading.
	Solar: {
		{Match: FloatAtLeast("kp_index", 8), Rank: 0, Class: "SEVERE STORM", Level: LevelSevere},
		{Match: FloatAtLeast("kp_index", 7), Rank: 1, Class: "SEVERE STORM", Level: LevelWarning},
		{Match: FloatAtLeast("kp_index", 5), Rank: 2, Class: "STRONG STORM", Level: LevelWarning},
		{Match: FloatAtLeast("kp_index", 4), Rank: 3, Class: "MINOR STORM", Level: LevelWarning},
		{Match: FloatAtLeast("kp_index", 3), Rank: 4, Class: "UNSETTLED", Level: LevelInfo},
		{Match: Has("kp_index"), Rank: 5, Class: "QUIET", Level: LevelInfo},
		{Match: Always(), Rank: 6, Class: "event", Level: LevelInfo},
	},

	// NOAA space weather scales, G/S/R 1..5.
	SpaceWeather: {
		{Match: FloatAtLeast("scale", 5), Rank: 0, Class: "Extreme", Level: LevelSevere},
		{Match: FloatAtLeast("scale", 4), Rank: 1, Class: "Severe", Level: LevelSevere},
		{Match: FloatAtLeast("scale", 3), Rank: 2, Class: "Strong", Level: LevelWarning},
		{Match: FloatAtLeast("scale", 2), Rank: 3, Class: "Moderate", Level: LevelWarning},
		{Match: FloatAtLeast("scale", 1), Rank: 4, Class: "Minor", Level: LevelWarning},
		{Match: Always(), Rank: 5, Class: "Unscaled", Level: LevelInfo},
	},

	Volcano: {
		{Match: Equals("alert_level", "WARNING"), Rank: 0, Class: "WARNING", Level: LevelCritical},
		{Match: Equals("alert_level", "WATCH"), Rank: 1, Class: "WATCH", Level: LevelWarning},
		{Match: Equals("alert_level", "ADVISORY"), Rank: 2, Class: "ADVISORY", Level: LevelInfo},
		{Match: Equals("alert_level", "NORMAL"), Rank: 3, Class: "NORMAL", Level: LevelInfo},
		{Match: Always(), Rank: 4, Class: "UNASSIGNED", Level: LevelInfo},
	},

	Tsunami: {
		{Match: Contains("category", "warning"), Rank: 0, Class: "Warning", Level: LevelCritical},
		{Match: Contains("category", "advisory"), Rank: 1, Class: "Advisory", Level: LevelCritical},
		{Match: Contains("category", "watch"), Rank: 2, Class: "Watch", Level: LevelCritical},
		{Match: Always(), Rank: 3, Class: "Information", Level: LevelCritical},
	},

	// Saffir-Simpson from sustained wind in knots for NHC storms; NWS
	// tropical alerts slot in by product name.
	Hurricane: {
		{Match: FloatAtLeast("intensity", 137), Rank: 0, Class: "Category 5", Level: LevelCritical},
		{Match: FloatAtLeast("intensity", 113), Rank: 1, Class: "Category 4", Level: LevelCritical},
		{Match: FloatAtLeast("intensity", 96), Rank: 2, Class: "Category 3", Level: LevelCritical},
		{Match: FloatAtLeast("intensity", 83), Rank: 3, Class: "Category 2", Level: LevelCritical},
		{Match: FloatAtLeast("intensity", 64), Rank: 4, Class: "Category 1", Level: LevelCritical},
		{Match: Contains("event", "hurricane warning"), Rank: 4, Class: "Hurricane Warning", Level: LevelCritical},
		{Match: FloatAtLeast("intensity", 34), Rank: 5, Class: "Tropical Storm", Level: LevelWarning},
		{Match: Contains("event", "tropical storm warning"), Rank: 5, Class: "Tropical Storm Warning", Level: LevelWarning},
		{Match: Contains("event", "hurricane watch"), Rank: 5, Class: "Hurricane Watch", Level: LevelWarning},
		{Match: Has("intensity"), Rank: 6, Class: "Tropical Depression", Level: LevelInfo},
		{Match: Always(), Rank: 7, Class: "Tropical Alert", Level: LevelInfo},
	},

	Wildfire: {
		{Match: Equals("severity", "extreme"), Rank: 0, Class: "Extreme", Level: LevelCritical},
		{Match: Equals("severity", "severe"), Rank: 1, Class: "Severe", Level: LevelWarning},
		{Match: FloatAtLeast("acres", 100000), Rank: 1, Class: "Megafire", Level: LevelWarning},
		{Match: Equals("severity", "moderate"), Rank: 2, Class: "Moderate", Level: LevelInfo},
		{Match: FloatAtLeast("acres", 10000), Rank: 2, Class: "Large", Level: LevelInfo},
		{Match: Always(), Rank: 3, Class: "Other", Level: LevelInfo},
	},

	SevereWeather: {
		{Match: Contains("event", "tornado warning"), Rank: 0, Class: "Tornado Warning", Level: LevelEmergency},
		{Match: Equals("severity", "extreme"), Rank: 1, Class: "Extreme", Level: LevelCritical},
		{Match: Contains("event", "tornado watch"), Rank: 2, Class: "Tornado Watch", Level: LevelWarning},
		{Match: Contains("event", "thunderstorm warning"), Rank: 3, Class: "Thunderstorm Warning", Level: LevelWarning},
		{Match: Contains("event", "flood warning"), Rank: 4, Class: "Flood Warning", Level: LevelWarning},
		{Match: All(Contains("event", "winter"), Contains("event", "warning")), Rank: 5, Class: "Winter Warning", Level: LevelWarning},
		{Match: Contains("event", "watch"), Rank: 6, Class: "Watch", Level: LevelWarning},
		{Match: Contains("event", "advisory"), Rank: 7, Class: "Advisory", Level: LevelWarning},
		{Match: Always(), Rank: 8, Class: "Statement", Level: LevelWarning},
	},

	// Gauge stages and NWS alert keywords share ranks so the two source kinds
	// interleave. Severity is only consulted when the event name says nothing.
	Flood: {
		{Match: Equals("stage", "major"), Rank: 0, Class: "major", Level: LevelCritical},
		{Match: Contains("event", "flash flood warning"), Rank: 0, Class: "major", Level: LevelCritical},
		{Match: Equals("stage", "moderate"), Rank: 1, Class: "moderate", Level: LevelWarning},
		{Match: Contains("event", "warning"), Rank: 1, Class: "moderate", Level: LevelWarning},
		{Match: Equals("stage", "minor"), Rank: 2, Class: "minor", Level: LevelWarning},
		{Match: Contains("event", "watch"), Rank: 2, Class: "minor", Level: LevelWarning},
		{Match: Equals("stage", "action"), Rank: 3, Class: "action", Level: LevelWarning},
		{Match: Contains("event", "advisory"), Rank: 3, Class: "action", Level: LevelWarning},
		{Match: Equals("severity", "extreme"), Rank: 0, Class: "major", Level: LevelCritical},
		{Match: Equals("severity", "severe"), Rank: 1, Class: "moderate", Level: LevelWarning},
		{Match: Always(), Rank: 2, Class: "minor", Level: LevelWarning},
	},

	AirQuality: {
		{Match: FloatAbove("aqi", 300), Rank: 0, Class: "hazardous", Level: LevelHazardous},
		{Match: FloatAbove("aqi", 200), Rank: 1, Class: "very_unhealthy", Level: LevelCritical},
		{Match: FloatAbove("aqi", 150), Rank: 2, Class: "unhealthy", Level: LevelWarning},
		{Match: FloatAbove("aqi", 100), Rank: 3, Class: "usg", Level: LevelInfo},
		{Match: FloatAbove("aqi", 50), Rank: 4, Class: "moderate", Level: LevelInfo},
		{Match: Has("aqi"), Rank: 5, Class: "good", Level: LevelInfo},
		{Match: Always(), Rank: 6, Class: "unknown", Level: LevelInfo},
	},

	Drought: {
		{Match: FloatAbove("d4", 0), Rank: 0, Class: "D4", Level: LevelCritical},
		{Match: FloatAbove("d3", 0), Rank: 1, Class: "D3", Level: LevelWarning},
		{Match: FloatAbove("d2", 0), Rank: 2, Class: "D2", Level: LevelWarning},
		{Match: FloatAbove("d1", 0), Rank: 3, Class: "D1", Level: LevelInfo},
		{Match: FloatAbove("d0", 0), Rank: 4, Class: "D0", Level: LevelInfo},
		{Match: Always(), Rank: 5, Class: "None", Level: LevelInfo},
	},

	// NTAS bulletins, State Department travel levels and CISA known exploited
	// vulnerabilities interleave on one scale.
	ThreatAdvisory: {
		{Match: Contains("ntas_type", "imminent"), Rank: 0, Class: "Imminent", Level: LevelCritical},
		{Match: FloatAtLeast("travel_level", 4), Rank: 1, Class: "Level 4", Level: LevelCritical},
		{Match: Contains("ntas_type", "elevated"), Rank: 2, Class: "Elevated", Level: LevelWarning},
		{Match: FloatAtLeast("travel_level", 3), Rank: 3, Class: "Level 3", Level: LevelWarning},
		{Match: Equals("ransomware", "known"), Rank: 4, Class: "Ransomware", Level: LevelWarning},
		{Match: FloatAtLeast("travel_level", 2), Rank: 5, Class: "Level 2", Level: LevelInfo},
		{Match: Has("cve"), Rank: 6, Class: "Known Exploited", Level: LevelInfo},
		{Match: FloatAtLeast("travel_level", 1), Rank: 7, Class: "Level 1", Level: LevelInfo},
		{Match: Always(), Rank: 8, Class: "Bulletin", Level: LevelInfo},
	},
}

// LadderFor returns the severity ladder of a category, or nil.
func LadderFor(c Category) Ladder {
	return ladders[c]
}
