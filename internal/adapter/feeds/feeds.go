// Package feeds fetches the public hazard feeds and parses each wire format
// into raw domain records. Every feed is a single GET; nothing is retried.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/couchcryptid/wems/internal/domain"
)

// Feed names one upstream endpoint.
type Feed string

const (
	USGSEarthquakes  Feed = "usgs_earthquakes"
	SWPCKIndex       Feed = "swpc_k_index"
	SWPCEvents       Feed = "swpc_events"
	SWPCAlerts       Feed = "swpc_alerts"
	HANSElevated     Feed = "hans_elevated"
	HANSNotices      Feed = "hans_notices"
	TsunamiEvents    Feed = "tsunami_events"
	NHCStorms        Feed = "nhc_storms"
	NWSAlerts        Feed = "nws_alerts"
	NIFCIncidents    Feed = "nifc_incidents"
	NWPSGauges       Feed = "nwps_gauges"
	AirNowCurrent    Feed = "airnow_current"
	AirNowForecast   Feed = "airnow_forecast"
	OpenAQLatest     Feed = "openaq_latest"
	USDMStatistics   Feed = "usdm_statistics"
	NTASBulletins    Feed = "dhs_ntas"
	TravelAdvisories Feed = "state_travel"
	CISAKEV          Feed = "cisa_kev"
)

// ErrUnknownFeed is returned for a Feed with no registered source.
var ErrUnknownFeed = errors.New("unknown feed")

// Query carries per-call feed parameters. Keys are feed-specific.
type Query map[string]string

// encode renders q with sorted keys so equal queries encode identically.
func (q Query) encode() string {
	v := make(url.Values, len(q))
	for k, val := range q {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v.Encode()
}

// Fetcher retrieves the records of one feed.
type Fetcher interface {
	Fetch(ctx context.Context, feed Feed, q Query) ([]domain.Record, error)
}

// FetchError reports a failed feed call. StatusCode is zero when the request
// never produced a response.
type FetchError struct {
	Feed       Feed
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Feed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Feed, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Endpoints holds the base URL of every upstream service. Tests point them
// at httptest servers.
type Endpoints struct {
	USGS    string
	SWPC    string
	HANS    string
	Tsunami string
	NHC     string
	NWS     string
	NIFC    string
	NWPS    string
	AirNow  string
	OpenAQ  string
	USDM    string
	NTAS    string
	Travel  string
	CISA    string
}

// DefaultEndpoints returns the production base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		USGS:    "https://earthquake.usgs.gov/fdsnws/event/1",
		SWPC:    "https://services.swpc.noaa.gov",
		HANS:    "https://volcanoes.usgs.gov/hans-public/api",
		Tsunami: "https://www.tsunami.gov",
		NHC:     "https://www.nhc.noaa.gov",
		NWS:     "https://api.weather.gov",
		NIFC:    "https://services3.arcgis.com/T4QMspbfLg3qTGWY/arcgis/rest/services/WFIGS_Incident_Locations_Current/FeatureServer/0",
		NWPS:    "https://api.water.noaa.gov/nwps/v1",
		AirNow:  "https://www.airnowapi.org",
		OpenAQ:  "https://api.openaq.org/v2",
		USDM:    "https://usdmdataservices.unl.edu/api",
		NTAS:    "https://www.dhs.gov/ntas/1.1",
		Travel:  "https://travel.state.gov/_res/rss",
		CISA:    "https://www.cisa.gov/sites/default/files/feeds",
	}
}

// AllAt returns an Endpoints with every service rooted at base.
func AllAt(base string) Endpoints {
	return Endpoints{
		USGS: base, SWPC: base, HANS: base, Tsunami: base, NHC: base, NWS: base, NIFC: base,
		NWPS: base, AirNow: base, OpenAQ: base, USDM: base, NTAS: base, Travel: base, CISA: base,
	}
}
