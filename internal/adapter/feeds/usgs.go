package feeds

import (
	"encoding/json"

	"github.com/couchcryptid/wems/internal/domain"
)

type usgsResponse struct {
	Features []struct {
		ID         string `json:"id"`
		Properties struct {
			Mag     *float64 `json:"mag"`
			Place   string   `json:"place"`
			Time    int64    `json:"time"`
			URL     string   `json:"url"`
			Title   string   `json:"title"`
			Status  string   `json:"status"`
			Tsunami int      `json:"tsunami"`
			Alert   string   `json:"alert"`
			Type    string   `json:"type"`
		} `json:"properties"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // [lon, lat, depth km]
		} `json:"geometry"`
	} `json:"features"`
}

// parseUSGS reads an FDSN event GeoJSON document.
func parseUSGS(body []byte, _ Query) ([]domain.Record, error) {
	var resp usgsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(resp.Features))
	for _, f := range resp.Features {
		p := f.Properties
		rec := domain.Record{
			domain.KeyID:       f.ID,
			domain.KeyLocation: p.Place,
			"title":            p.Title,
			"url":              p.URL,
			"review_status":    p.Status,
			"event_type":       p.Type,
			"tsunami":          p.Tsunami == 1,
		}
		if p.Time > 0 {
			rec[domain.KeyTime] = p.Time
		}
		if p.Mag != nil {
			rec["magnitude"] = *p.Mag
		}
		if p.Alert != "" {
			rec["pager_alert"] = p.Alert
		}
		if c := f.Geometry.Coordinates; len(c) >= 3 {
			rec["longitude"] = c[0]
			rec["latitude"] = c[1]
			rec["depth"] = c[2]
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
