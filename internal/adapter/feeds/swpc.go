package feeds

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type kIndexReading struct {
	TimeTag     string   `json:"time_tag"`
	KpIndex     *float64 `json:"kp_index"`
	EstimatedKp *float64 `json:"estimated_kp"`
	Kp          string   `json:"kp"`
}

// parseKIndex keeps only the latest planetary K-index reading.
func parseKIndex(body []byte, _ Query) ([]domain.Record, error) {
	var readings []kIndexReading
	if err := json.Unmarshal(body, &readings); err != nil {
		return nil, err
	}
	var latest *kIndexReading
	for i := range readings {
		r := &readings[i]
		if r.KpIndex == nil && r.EstimatedKp == nil {
			continue
		}
		if latest == nil || r.TimeTag > latest.TimeTag {
			latest = r
		}
	}
	if latest == nil {
		return nil, nil
	}

	kp := latest.EstimatedKp
	if kp == nil {
		kp = latest.KpIndex
	}
	return []domain.Record{{
		domain.KeyID:       "kindex-" + latest.TimeTag,
		domain.KeyTime:     latest.TimeTag,
		domain.KeyLocation: "Planetary",
		"title":            "Planetary K-index",
		"kp_index":         *kp,
		"kp_label":         latest.Kp,
	}}, nil
}

// parseSWPCEvents reads the edited events list. Field names differ between
// product revisions, so each value is looked up under its known aliases.
func parseSWPCEvents(body []byte, _ Query) ([]domain.Record, error) {
	var raw []map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(raw))
	for _, item := range raw {
		r := domain.Record(item)
		eventType := r.String("type")
		when := firstOf(r, "begin_time", "begin_datetime", "event_time")
		message := firstOf(r, "message", "particulars1")
		if eventType == "" && message == "" {
			continue
		}
		rec := domain.Record{
			domain.KeyTime:     when,
			domain.KeyLocation: firstOf(r, "location", "region"),
			"type":             eventType,
			"title":            eventType,
			"message":          message,
		}
		if id := firstOf(r, "id", "event_id"); id != "" {
			rec[domain.KeyID] = "swpc-event-" + id
		}
		if peak := firstOf(r, "max_time", "max_datetime"); peak != "" {
			rec["peak_time"] = peak
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type swpcAlert struct {
	ProductID     string `json:"product_id"`
	IssueDatetime string `json:"issue_datetime"`
	Message       string `json:"message"`
}

var (
	swpcScaleRe = regexp.MustCompile(`NOAA Scale:\s*([GSR])([1-5])\s*-\s*([A-Za-z]+)`)
	swpcTitleRe = regexp.MustCompile(`(?m)^\s*((?:EXTENDED |CANCEL )?(?:ALERT|WARNING|WATCH|SUMMARY)):\s*(.+?)\s*$`)
)

// parseSWPCAlerts extracts the headline and NOAA scale from each alert
// message. Alerts without a scale are kept as unscaled.
func parseSWPCAlerts(body []byte, _ Query) ([]domain.Record, error) {
	var alerts []swpcAlert
	if err := json.Unmarshal(body, &alerts); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(alerts))
	for _, a := range alerts {
		msg := strings.ReplaceAll(a.Message, "\r\n", "\n")
		rec := domain.Record{
			domain.KeyID:   fmt.Sprintf("swpc-%s-%s", a.ProductID, a.IssueDatetime),
			domain.KeyTime: a.IssueDatetime,
			"product_id":   a.ProductID,
			"message":      msg,
			"title":        a.ProductID,
		}
		if m := swpcTitleRe.FindStringSubmatch(msg); m != nil {
			rec["kind"] = m[1]
			rec["title"] = m[2]
		}
		if m := swpcScaleRe.FindStringSubmatch(msg); m != nil {
			n, _ := strconv.Atoi(m[2])
			rec["scale"] = float64(n)
			rec["scale_type"] = m[1]
			rec["scale_label"] = fmt.Sprintf("%s%s - %s", m[1], m[2], m[3])
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// firstOf returns the first non-empty value among keys.
func firstOf(r domain.Record, keys ...string) string {
	for _, k := range keys {
		if v := r.String(k); v != "" {
			return v
		}
	}
	return ""
}
