package feeds

import (
	"encoding/json"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type nwsResponse struct {
	Features []struct {
		Properties struct {
			ID          string `json:"id"`
			AreaDesc    string `json:"areaDesc"`
			Event       string `json:"event"`
			Severity    string `json:"severity"`
			Urgency     string `json:"urgency"`
			Certainty   string `json:"certainty"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			Instruction string `json:"instruction"`
			Sent        string `json:"sent"`
			Effective   string `json:"effective"`
			Expires     string `json:"expires"`
			Status      string `json:"status"`
			MessageType string `json:"messageType"`
			SenderName  string `json:"senderName"`
		} `json:"properties"`
	} `json:"features"`
}

// parseNWS reads an api.weather.gov alert collection. Severity is lowered so
// it compares directly with tier and rule vocabularies.
func parseNWS(body []byte, _ Query) ([]domain.Record, error) {
	var resp nwsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(resp.Features))
	for _, f := range resp.Features {
		p := f.Properties
		when := p.Effective
		if when == "" {
			when = p.Sent
		}
		title := p.Headline
		if title == "" {
			title = p.Event
		}
		recs = append(recs, domain.Record{
			domain.KeyID:       p.ID,
			domain.KeyLocation: p.AreaDesc,
			domain.KeyTime:     when,
			domain.KeyStatus:   p.Status,
			"title":            title,
			"event":            p.Event,
			"severity":         strings.ToLower(p.Severity),
			"urgency":          strings.ToLower(p.Urgency),
			"certainty":        strings.ToLower(p.Certainty),
			"description":      p.Description,
			"instruction":      p.Instruction,
			"expires":          p.Expires,
			"message_type":     p.MessageType,
			"sender":           p.SenderName,
		})
	}
	return recs, nil
}
