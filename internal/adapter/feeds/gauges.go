package feeds

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type nwpsResponse struct {
	Gauges []nwpsGauge `json:"gauges"`
}

type nwpsGauge struct {
	LID   string `json:"lid"`
	Name  string `json:"name"`
	State struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"state"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    struct {
		Observed struct {
			Primary       *float64 `json:"primary"`
			PrimaryUnit   string   `json:"primaryUnit"`
			FloodCategory string   `json:"floodCategory"`
			ValidTime     string   `json:"validTime"`
		} `json:"observed"`
	} `json:"status"`
}

var errNoGauges = errors.New("missing gauges array")

// floodingStages are the NWPS categories worth reporting; "no_flooding",
// "not_defined" and "obs_not_current" are skipped.
var floodingStages = map[string]bool{
	"action":   true,
	"minor":    true,
	"moderate": true,
	"major":    true,
}

// parseNWPS reads the national gauge list and keeps gauges currently at or
// above action stage. q["state"] restricts to one state.
func parseNWPS(body []byte, q Query) ([]domain.Record, error) {
	var resp nwpsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Gauges == nil {
		return nil, errNoGauges
	}
	wantState := strings.ToUpper(q["state"])

	var recs []domain.Record
	for _, g := range resp.Gauges {
		obs := g.Status.Observed
		stage := strings.ToLower(obs.FloodCategory)
		if !floodingStages[stage] {
			continue
		}
		state := strings.ToUpper(g.State.Abbreviation)
		if wantState != "" && state != wantState {
			continue
		}
		rec := domain.Record{
			domain.KeyID:       "gauge-" + g.LID,
			domain.KeyLocation: joinNonEmpty(", ", g.Name, state),
			domain.KeyTime:     obs.ValidTime,
			"name":             g.Name,
			"title":            g.Name,
			"stage":            stage,
			"state":            state,
			"unit":             obs.PrimaryUnit,
		}
		if obs.Primary != nil {
			rec["observed"] = *obs.Primary
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
