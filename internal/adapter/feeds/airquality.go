package feeds

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// airNowObservation covers both the current observation and forecast
// products. AQI is -1 when a forecast carries only a category.
type airNowObservation struct {
	DateObserved  string  `json:"DateObserved"`
	HourObserved  *int    `json:"HourObserved"`
	DateForecast  string  `json:"DateForecast"`
	LocalTimeZone string  `json:"LocalTimeZone"`
	ReportingArea string  `json:"ReportingArea"`
	StateCode     string  `json:"StateCode"`
	Latitude      float64 `json:"Latitude"`
	Longitude     float64 `json:"Longitude"`
	ParameterName string  `json:"ParameterName"`
	AQI           int     `json:"AQI"`
	Category      struct {
		Number int    `json:"Number"`
		Name   string `json:"Name"`
	} `json:"Category"`
	ActionDay  bool   `json:"ActionDay"`
	Discussion string `json:"Discussion"`
}

// parseAirNow reads an AirNow observation or forecast array. Times are the
// reporting area's local time and are treated as UTC.
func parseAirNow(body []byte, _ Query) ([]domain.Record, error) {
	var obs []airNowObservation
	if err := json.Unmarshal(body, &obs); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(obs))
	for _, o := range obs {
		forecast := o.DateForecast != ""
		date := strings.TrimSpace(o.DateObserved)
		if forecast {
			date = strings.TrimSpace(o.DateForecast)
		}
		when := date
		if o.HourObserved != nil && date != "" {
			when = fmt.Sprintf("%s %02d:00", date, *o.HourObserved)
		}
		param := NormalizeParameter(o.ParameterName)
		location := joinNonEmpty(", ", o.ReportingArea, o.StateCode)

		rec := domain.Record{
			domain.KeyID:       fmt.Sprintf("airnow-%s-%s-%s-%t", location, param, when, forecast),
			domain.KeyLocation: location,
			domain.KeyTime:     when,
			"title":            o.ParameterName,
			"station":          o.ReportingArea,
			"parameter":        param,
			"parameter_name":   o.ParameterName,
			"category_name":    o.Category.Name,
			"forecast":         forecast,
			"action_day":       o.ActionDay,
			"discussion":       o.Discussion,
			"latitude":         o.Latitude,
			"longitude":        o.Longitude,
		}
		if o.AQI >= 0 {
			rec["aqi"] = float64(o.AQI)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type openAQResponse struct {
	Results []struct {
		Location     string `json:"location"`
		City         string `json:"city"`
		Country      string `json:"country"`
		Measurements []struct {
			Parameter   string  `json:"parameter"`
			Value       float64 `json:"value"`
			Unit        string  `json:"unit"`
			LastUpdated string  `json:"lastUpdated"`
		} `json:"measurements"`
	} `json:"results"`
}

// parseOpenAQ flattens the latest measurements of each location into one
// record per parameter, computing the EPA AQI where a table exists.
func parseOpenAQ(body []byte, _ Query) ([]domain.Record, error) {
	var resp openAQResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	var recs []domain.Record
	for _, r := range resp.Results {
		location := joinNonEmpty(", ", r.Location, r.City, r.Country)
		for _, m := range r.Measurements {
			param := NormalizeParameter(m.Parameter)
			rec := domain.Record{
				domain.KeyID:       fmt.Sprintf("openaq-%s-%s-%s", location, param, m.LastUpdated),
				domain.KeyLocation: location,
				domain.KeyTime:     m.LastUpdated,
				"title":            m.Parameter,
				"station":          r.Location,
				"country":          r.Country,
				"parameter":        param,
				"value":            m.Value,
				"unit":             m.Unit,
			}
			if aqi, ok := ComputeAQI(param, m.Value, m.Unit); ok {
				rec["aqi"] = float64(aqi)
			}
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
