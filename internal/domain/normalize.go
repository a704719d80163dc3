package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// nonLiveStatuses mark exercise traffic that must never surface.
var nonLiveStatuses = map[string]bool{
	"test":     true,
	"exercise": true,
	"draft":    true,
	"drill":    true,
}

// IsLive reports whether rec is real-world data rather than test or drill traffic.
func IsLive(rec Record) bool {
	return !nonLiveStatuses[strings.ToLower(rec.String(KeyStatus))]
}

// Normalize converts the records of one feed into events. kind tags the
// origin feed when several feeds back one check. Test and drill records are
// dropped; nothing else is.
func Normalize(c Category, kind string, recs []Record) []Event {
	ladder := LadderFor(c)
	events := make([]Event, 0, len(recs))
	for _, rec := range recs {
		if !IsLive(rec) {
			continue
		}
		events = append(events, NormalizeRecord(c, ladder, kind, rec))
	}
	return events
}

// NormalizeRecord converts one record using the given ladder.
func NormalizeRecord(c Category, ladder Ladder, kind string, rec Record) Event {
	rung, ok := ladder.Classify(rec)
	if !ok {
		rung = Rung{Rank: ladder.Worst() + 1, Class: "unknown", Level: LevelInfo}
	}
	occurred, _ := rec.Time(KeyTime)
	location := rec.String(KeyLocation)

	id := rec.String(KeyID)
	if id == "" {
		id = generateID(c, kind, location, rec.String(KeyTime), rec.String("title"))
	}

	return Event{
		ID:           id,
		Category:     c,
		SeverityRank: rung.Rank,
		Class:        rung.Class,
		AlertLevel:   rung.Level,
		Location:     location,
		OccurredAt:   occurred,
		SourceKind:   kind,
		Payload:      rec,
	}
}

// generateID produces a deterministic ID from an event's identifying fields.
// Identical records fetched from overlapping feeds hash to the same ID and
// collapse during aggregation.
func generateID(c Category, kind, location, when, title string) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s", c, kind, location, when, title)
	hash := sha256.Sum256([]byte(input))
	return string(c) + "-" + hex.EncodeToString(hash[:8])
}
