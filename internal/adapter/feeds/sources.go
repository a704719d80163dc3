package feeds

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

const (
	acceptJSON    = "application/json"
	acceptGeoJSON = "application/geo+json"
	acceptXML     = "application/xml, text/xml;q=0.9, */*;q=0.5"
)

// errNoAirNowKey is returned when an AirNow feed is requested without a key.
var errNoAirNowKey = errors.New("AirNow API key is not configured")

// source binds a feed to its URL builder and wire-format parser.
type source struct {
	endpoint func(c *Client, q Query) (string, error)
	accept   string
	parse    func(body []byte, q Query) ([]domain.Record, error)
}

var sources = map[Feed]source{
	USGSEarthquakes:  {endpoint: usgsEndpoint, accept: acceptGeoJSON, parse: parseUSGS},
	SWPCKIndex:       {endpoint: fixed(func(e Endpoints) string { return e.SWPC + "/json/planetary_k_index_1m.json" }), accept: acceptJSON, parse: parseKIndex},
	SWPCEvents:       {endpoint: fixed(func(e Endpoints) string { return e.SWPC + "/json/edited_events.json" }), accept: acceptJSON, parse: parseSWPCEvents},
	SWPCAlerts:       {endpoint: fixed(func(e Endpoints) string { return e.SWPC + "/products/alerts.json" }), accept: acceptJSON, parse: parseSWPCAlerts},
	HANSElevated:     {endpoint: fixed(func(e Endpoints) string { return e.HANS + "/volcano/getElevatedVolcanoes" }), accept: acceptJSON, parse: parseHANS},
	HANSNotices:      {endpoint: hansNoticesEndpoint, accept: acceptJSON, parse: parseHANS},
	TsunamiEvents:    {endpoint: fixed(func(e Endpoints) string { return e.Tsunami + "/events/json/events.json" }), accept: acceptJSON, parse: parseTsunami},
	NHCStorms:        {endpoint: fixed(func(e Endpoints) string { return e.NHC + "/CurrentStorms.json" }), accept: acceptJSON, parse: parseNHC},
	NWSAlerts:        {endpoint: nwsEndpoint, accept: acceptGeoJSON, parse: parseNWS},
	NIFCIncidents:    {endpoint: nifcEndpoint, accept: acceptJSON, parse: parseNIFC},
	NWPSGauges:       {endpoint: fixed(func(e Endpoints) string { return e.NWPS + "/gauges" }), accept: acceptJSON, parse: parseNWPS},
	AirNowCurrent:    {endpoint: airNowEndpoint("observation", "/current/"), accept: acceptJSON, parse: parseAirNow},
	AirNowForecast:   {endpoint: airNowEndpoint("forecast", "/"), accept: acceptJSON, parse: parseAirNow},
	OpenAQLatest:     {endpoint: openAQEndpoint, accept: acceptJSON, parse: parseOpenAQ},
	USDMStatistics:   {endpoint: usdmEndpoint, accept: acceptJSON, parse: parseUSDM},
	NTASBulletins:    {endpoint: fixed(func(e Endpoints) string { return e.NTAS + "/feed.xml" }), accept: acceptXML, parse: parseNTAS},
	TravelAdvisories: {endpoint: fixed(func(e Endpoints) string { return e.Travel + "/TAsTWs.xml" }), accept: acceptXML, parse: parseTravel},
	CISAKEV:          {endpoint: fixed(func(e Endpoints) string { return e.CISA + "/known_exploited_vulnerabilities.json" }), accept: acceptJSON, parse: parseCISA},
}

// fixed builds an endpoint that ignores the query.
func fixed(path func(Endpoints) string) func(*Client, Query) (string, error) {
	return func(c *Client, _ Query) (string, error) {
		return path(c.endpoints), nil
	}
}

func withParams(base string, params url.Values) string {
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// copyParams copies the named, non-empty query keys into params.
func copyParams(params url.Values, q Query, keys ...string) {
	for _, k := range keys {
		if v := q[k]; v != "" {
			params.Set(k, v)
		}
	}
}

func usgsEndpoint(c *Client, q Query) (string, error) {
	params := url.Values{"format": {"geojson"}, "orderby": {"time"}}
	copyParams(params, q, "starttime", "endtime", "minmagnitude", "latitude", "longitude", "maxradiuskm", "limit")
	return withParams(c.endpoints.USGS+"/query", params), nil
}

func hansNoticesEndpoint(c *Client, q Query) (string, error) {
	params := url.Values{}
	copyParams(params, q, "days")
	return withParams(c.endpoints.HANS+"/notice/getRecentNotices", params), nil
}

// nwsEndpoint requests only actual alerts. area takes a state code.
func nwsEndpoint(c *Client, q Query) (string, error) {
	params := url.Values{"status": {"actual"}}
	copyParams(params, q, "area", "event", "severity", "urgency", "certainty", "limit")
	return withParams(c.endpoints.NWS+"/alerts/active", params), nil
}

// nifcEndpoint queries the WFIGS current incident layer for wildfires of at
// least min_acres, optionally in one state.
func nifcEndpoint(c *Client, q Query) (string, error) {
	clauses := []string{"IncidentTypeCategory = 'WF'"}
	if acres := q["min_acres"]; acres != "" {
		clauses = append(clauses, "IncidentSize >= "+acres)
	}
	if st := strings.ToUpper(q["state"]); st != "" {
		clauses = append(clauses, fmt.Sprintf("POOState = 'US-%s'", st))
	}
	limit := q["limit"]
	if limit == "" {
		limit = "100"
	}
	params := url.Values{
		"where":             {strings.Join(clauses, " AND ")},
		"outFields":         {"*"},
		"orderByFields":     {"IncidentSize DESC"},
		"resultRecordCount": {limit},
		"f":                 {"json"},
	}
	return withParams(c.endpoints.NIFC+"/query", params), nil
}

// airNowEndpoint picks the zip code or lat/long variant of an AirNow product.
func airNowEndpoint(product, suffix string) func(*Client, Query) (string, error) {
	return func(c *Client, q Query) (string, error) {
		if c.airnowKey == "" {
			return "", errNoAirNowKey
		}
		params := url.Values{"format": {acceptJSON}, "API_KEY": {c.airnowKey}}
		copyParams(params, q, "distance", "date")
		var path string
		switch {
		case q["zip_code"] != "":
			path = "/aq/" + product + "/zipCode" + suffix
			params.Set("zipCode", q["zip_code"])
		case q["latitude"] != "" && q["longitude"] != "":
			path = "/aq/" + product + "/latLong" + suffix
			copyParams(params, q, "latitude", "longitude")
		default:
			return "", errors.New("zip_code or latitude/longitude required")
		}
		return withParams(c.endpoints.AirNow+path, params), nil
	}
}

// openAQEndpoint asks for the latest measurements in a country. parameters
// is a comma-separated list.
func openAQEndpoint(c *Client, q Query) (string, error) {
	params := url.Values{"limit": {"100"}}
	copyParams(params, q, "country", "city", "limit")
	for _, p := range strings.Split(q["parameters"], ",") {
		if p = strings.TrimSpace(p); p != "" {
			params.Add("parameter", p)
		}
	}
	return withParams(c.endpoints.OpenAQ+"/latest", params), nil
}

// usdmEndpoint takes aoi as a two-digit state FIPS code and startdate and
// enddate as M/D/YYYY.
func usdmEndpoint(c *Client, q Query) (string, error) {
	if q["aoi"] == "" {
		return "", errors.New("aoi required")
	}
	params := url.Values{"statisticsType": {"1"}}
	copyParams(params, q, "aoi", "startdate", "enddate")
	return withParams(c.endpoints.USDM+"/StateStatistics/GetDroughtSeverityStatisticsByAreaPercent", params), nil
}
