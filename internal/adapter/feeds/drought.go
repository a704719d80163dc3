package feeds

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// usdmColumns are the percent-area columns of a statistics row. Values
// arrive as strings or numbers depending on the endpoint version.
var usdmColumns = []string{"None", "D0", "D1", "D2", "D3", "D4"}

// parseUSDM reads state drought statistics, newest week first.
func parseUSDM(body []byte, q Query) ([]domain.Record, error) {
	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, err
	}
	recs := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		r := domain.Record(row)
		state := strings.ToUpper(r.String("StateAbbreviation"))
		if state == "" {
			state = strings.ToUpper(q["state"])
		}
		mapDate := r.String("MapDate")
		when := r.String("ValidStart")
		if when == "" {
			when = mapDate
		}
		rec := domain.Record{
			domain.KeyID:       "usdm-" + state + "-" + mapDate,
			domain.KeyLocation: state,
			domain.KeyTime:     when,
			"title":            "Drought Monitor " + mapDate,
			"state":            state,
			"map_date":         mapDate,
			"valid_end":        r.String("ValidEnd"),
		}
		for _, col := range usdmColumns {
			if f, ok := r.Float(col); ok {
				rec[strings.ToLower(col)] = f
			}
		}
		recs = append(recs, rec)
	}
	slices.SortStableFunc(recs, func(a, b domain.Record) int {
		return strings.Compare(b.String("map_date"), a.String("map_date"))
	})
	return recs, nil
}
