package feeds

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type nhcResponse struct {
	ActiveStorms []nhcStorm `json:"activeStorms"`
}

type nhcStorm struct {
	ID             string `json:"id"`
	BinNumber      string `json:"binNumber"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Intensity      string `json:"intensity"`
	Pressure       string `json:"pressure"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
	MovementDir    int    `json:"movementDir"`
	MovementSpeed  int    `json:"movementSpeed"`
	LastUpdate     string `json:"lastUpdate"`
	PublicAdvisory struct {
		URL string `json:"url"`
	} `json:"publicAdvisory"`
	ForecastGraphics struct {
		URL string `json:"url"`
	} `json:"forecastGraphics"`
}

// basinByBin maps the NHC bin prefix to a basin name.
var basinByBin = map[string]string{
	"AT": "atlantic",
	"EP": "eastern_pacific",
	"CP": "central_pacific",
}

var classificationNames = map[string]string{
	"HU":  "Hurricane",
	"TS":  "Tropical Storm",
	"TD":  "Tropical Depression",
	"STS": "Subtropical Storm",
	"STD": "Subtropical Depression",
	"PTC": "Post-Tropical Cyclone",
	"PC":  "Potential Tropical Cyclone",
}

// parseNHC reads CurrentStorms.json. Intensity is sustained wind in knots.
func parseNHC(body []byte, _ Query) ([]domain.Record, error) {
	var resp nhcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(resp.ActiveStorms))
	for _, s := range resp.ActiveStorms {
		kind := classificationNames[strings.ToUpper(s.Classification)]
		if kind == "" {
			kind = s.Classification
		}
		basin := ""
		if len(s.BinNumber) >= 2 {
			basin = basinByBin[strings.ToUpper(s.BinNumber[:2])]
		}
		rec := domain.Record{
			domain.KeyID:       s.ID,
			domain.KeyTime:     s.LastUpdate,
			domain.KeyLocation: strings.TrimSpace(fmt.Sprintf("%s %s", s.Latitude, s.Longitude)),
			"name":             s.Name,
			"title":            strings.TrimSpace(kind + " " + s.Name),
			"classification":   kind,
			"basin":            basin,
			"advisory_url":     s.PublicAdvisory.URL,
			"forecast_url":     s.ForecastGraphics.URL,
			"movement":         fmt.Sprintf("%d° at %d mph", s.MovementDir, s.MovementSpeed),
		}
		if kt, err := strconv.ParseFloat(strings.TrimSpace(s.Intensity), 64); err == nil {
			rec["intensity"] = kt
		}
		if mb, err := strconv.ParseFloat(strings.TrimSpace(s.Pressure), 64); err == nil {
			rec["pressure"] = mb
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
