package feeds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

type arcgisResponse struct {
	Features []struct {
		Attributes nifcIncident `json:"attributes"`
	} `json:"features"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type nifcIncident struct {
	IrwinID               string   `json:"IrwinID"`
	IncidentName          string   `json:"IncidentName"`
	POOState              string   `json:"POOState"`
	POOCounty             string   `json:"POOCounty"`
	IncidentSize          *float64 `json:"IncidentSize"`
	PercentContained      *float64 `json:"PercentContained"`
	FireDiscoveryDateTime int64    `json:"FireDiscoveryDateTime"`
}

// parseNIFC reads an ArcGIS feature query. ArcGIS reports query errors with
// HTTP 200 and an "error" object.
func parseNIFC(body []byte, _ Query) ([]domain.Record, error) {
	var resp arcgisResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("arcgis error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	recs := make([]domain.Record, 0, len(resp.Features))
	for _, f := range resp.Features {
		inc := f.Attributes
		if inc.IncidentName == "" {
			continue
		}
		state := strings.TrimPrefix(strings.ToUpper(inc.POOState), "US-")
		location := joinNonEmpty(", ", inc.IncidentName, inc.POOCounty, state)
		rec := domain.Record{
			domain.KeyLocation: location,
			"name":             inc.IncidentName,
			"title":            inc.IncidentName + " Fire",
			"event":            "Wildfire",
			"state":            state,
		}
		if inc.IrwinID != "" {
			rec[domain.KeyID] = strings.Trim(strings.ToLower(inc.IrwinID), "{}")
		}
		if inc.FireDiscoveryDateTime > 0 {
			rec[domain.KeyTime] = inc.FireDiscoveryDateTime
		}
		if inc.IncidentSize != nil {
			rec["acres"] = *inc.IncidentSize
		}
		if inc.PercentContained != nil {
			rec["contained"] = *inc.PercentContained
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
