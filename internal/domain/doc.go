// Package domain models hazard occurrences collected from public feeds.
//
// # Records and Events
//
// Feed parsers yield [Record] values: flat string-keyed maps using a few
// canonical keys ("id", "location", "time", "status") plus category-specific
// fields such as "magnitude", "kp_index" or "aqi". The [Normalize] function
// turns records into [Event] values with a comparable severity rank.
//
// # Severity Ladders
//
// Every category owns one [Ladder]: an ordered list of rungs, most severe
// first, each pairing a predicate over a record with a rank, a class label
// and a coarse alert level. The first matching rung wins. Ranks are only
// comparable within one category, but they are comparable across source
// kinds of that category (NWS flood alerts and river gauges share a ladder).
//
// Vocabularies:
//
//	Earthquake:  M≥7.0 major | M≥6.0 strong | M≥5.0 moderate | light
//	Solar:       Kp≥7 SEVERE STORM | Kp≥5 STRONG STORM | Kp≥4 MINOR STORM | Kp≥3 UNSETTLED | QUIET
//	Air quality: AQI >300 hazardous | >200 very_unhealthy | >150 unhealthy | >100 usg | >50 moderate | good
//	Drought:     first non-zero of D4, D3, D2, D1, D0
//
// # Timestamps
//
// Feeds disagree on time encoding: RFC 3339, RFC 1123 (RSS), unix
// milliseconds, and naive "2006-01-02 15:04:05" strings all appear. Anything
// that fails to parse leaves [Event.OccurredAt] zero, and a zero time is never
// dropped by a recency cutoff.
//
// # ID Generation
//
// Records without a feed-supplied id get a deterministic SHA-256 id of
// category|kind|location|time, so the same record fetched twice in one call
// deduplicates. See [generateID].
package domain
