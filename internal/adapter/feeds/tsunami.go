package feeds

import (
	"encoding/json"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// parseTsunami reads the tsunami.gov event list. The document is either a
// bare array or an object wrapping one under "events".
func parseTsunami(body []byte, _ Query) ([]domain.Record, error) {
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		var wrapped struct {
			Events []map[string]any `json:"events"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, err
		}
		raw = wrapped.Events
	}

	recs := make([]domain.Record, 0, len(raw))
	for _, item := range raw {
		r := domain.Record(item)
		rec := domain.Record{
			domain.KeyLocation: firstOf(r, "location", "region", "title"),
			domain.KeyTime:     firstOf(r, "time", "issueTime", "issued", "originTime"),
			domain.KeyStatus:   r.String("status"),
			"title":            firstOf(r, "title", "headline"),
			"category":         firstOf(r, "category", "type", "event", "level"),
			"magnitude":        r.String("magnitude"),
			"region":           strings.ToLower(firstOf(r, "region", "basin", "ocean")),
			"url":              r.String("url"),
		}
		if id := r.String("id"); id != "" {
			rec[domain.KeyID] = "tsunami-" + id
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
