package feeds

import (
	"encoding/json"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type hansVolcano struct {
	Vnum             string `json:"vnum"`
	VolcanoName      string `json:"volcano_name"`
	NoticeIdentifier string `json:"notice_identifier"`
	ObsAbbr          string `json:"obs_abbr"`
	ObsFullname      string `json:"obs_fullname"`
	AlertLevel       string `json:"alert_level"`
	ColorCode        string `json:"color_code"`
	SentUTC          string `json:"sent_utc"`
	NoticeURL        string `json:"notice_url"`
	NoticeSynopsis   string `json:"notice_synopsis"`
}

// parseHANS reads both the elevated volcano list and the recent notice
// list; they share field names.
func parseHANS(body []byte, _ Query) ([]domain.Record, error) {
	var volcanoes []hansVolcano
	if err := json.Unmarshal(body, &volcanoes); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(volcanoes))
	for _, v := range volcanoes {
		id := v.NoticeIdentifier
		if id == "" && v.Vnum != "" {
			id = "volcano-" + v.Vnum
		}
		observatory := v.ObsFullname
		if observatory == "" {
			observatory = strings.ToUpper(v.ObsAbbr)
		}
		rec := domain.Record{
			domain.KeyLocation: v.VolcanoName,
			domain.KeyTime:     v.SentUTC,
			"name":             v.VolcanoName,
			"title":            v.VolcanoName,
			"alert_level":      strings.ToUpper(strings.TrimSpace(v.AlertLevel)),
			"color_code":       strings.ToUpper(strings.TrimSpace(v.ColorCode)),
			"observatory":      observatory,
			"url":              v.NoticeURL,
			"synopsis":         v.NoticeSynopsis,
		}
		if id != "" {
			rec[domain.KeyID] = id
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
