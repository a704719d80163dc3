package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usgsFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"id": "us7000abcd", "properties": {"mag": 6.4, "place": "120 km S of Sand Point, Alaska", "time": 1715300000000,
      "url": "https://earthquake.usgs.gov/earthquakes/eventpage/us7000abcd", "title": "M 6.4 - 120 km S of Sand Point, Alaska",
      "status": "reviewed", "tsunami": 1, "alert": "yellow", "type": "earthquake"},
     "geometry": {"coordinates": [-160.5, 54.2, 35.1]}},
    {"id": "ci40123456", "properties": {"mag": null, "place": "5 km N of Ridgecrest, CA", "time": 1715290000000,
      "status": "automatic", "tsunami": 0, "type": "earthquake"},
     "geometry": {"coordinates": [-117.6, 35.6]}}
  ]
}`

const nwsFixture = `{
  "features": [
    {"properties": {"id": "urn:oid:2.49.0.1.840.0.1", "areaDesc": "Dallas, TX", "event": "Tornado Warning",
      "severity": "Extreme", "urgency": "Immediate", "certainty": "Observed", "headline": "Tornado Warning issued May 10",
      "sent": "2024-05-10T18:00:00-05:00", "effective": "2024-05-10T18:01:00-05:00", "expires": "2024-05-10T18:45:00-05:00",
      "status": "Actual", "messageType": "Alert", "senderName": "NWS Fort Worth TX"}},
    {"properties": {"id": "urn:oid:2.49.0.1.840.0.2", "areaDesc": "Harris, TX", "event": "Flood Watch",
      "severity": "Moderate", "sent": "2024-05-10T12:00:00-05:00", "status": "Actual"}}
  ]
}`

func TestParseUSGS(t *testing.T) {
	recs, err := parseUSGS([]byte(usgsFixture), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	first := recs[0]
	mag, ok := first.Float("magnitude")
	require.True(t, ok)
	assert.InDelta(t, 6.4, mag, 1e-9)
	assert.Equal(t, "120 km S of Sand Point, Alaska", first.String("location"))
	assert.InDelta(t, 35.1, first.FloatOr("depth", 0), 1e-9)
	assert.True(t, first.Bool("tsunami"))
	ts, ok := first.Time("time")
	require.True(t, ok)
	assert.Equal(t, int64(1715300000000), ts.UnixMilli())

	_, ok = recs[1].Float("magnitude")
	assert.False(t, ok, "null magnitude is omitted")
	_, ok = recs[1].Float("depth")
	assert.False(t, ok, "short coordinate arrays carry no depth")
}

func TestParseKIndex_LatestOnly(t *testing.T) {
	body := `[
	  {"time_tag": "2024-05-10T12:00:00", "kp_index": 5, "estimated_kp": 5.33, "kp": "5P"},
	  {"time_tag": "2024-05-10T12:01:00", "kp_index": 8, "estimated_kp": 8.0, "kp": "8Z"},
	  {"time_tag": "2024-05-10T11:59:00", "kp_index": 4}
	]`
	recs, err := parseKIndex([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 8.0, recs[0].FloatOr("kp_index", 0), 1e-9)
	assert.Equal(t, "2024-05-10T12:01:00", recs[0].String("time"))
}

func TestParseKIndex_Empty(t *testing.T) {
	recs, err := parseKIndex([]byte(`[]`), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseSWPCEvents_Aliases(t *testing.T) {
	body := `[
	  {"begin_time": "2024-05-10 06:27", "type": "XRA", "message": "X3.9 flare"},
	  {"begin_datetime": "2024-05-10T08:00:00", "type": "CME", "particulars1": "Halo CME"},
	  {"begin_time": "2024-05-10 09:00"}
	]`
	recs, err := parseSWPCEvents([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2, "records with neither type nor message are skipped")
	assert.Equal(t, "X3.9 flare", recs[0].String("message"))
	assert.Equal(t, "Halo CME", recs[1].String("message"))
	assert.Equal(t, "2024-05-10T08:00:00", recs[1].String("time"))
}

func TestParseSWPCAlerts_Scale(t *testing.T) {
	body := `[
	  {"product_id": "K07A", "issue_datetime": "2024-05-10 17:59:00.000",
	   "message": "Space Weather Message Code: ALTK07\r\nSerial Number: 100\r\n\r\nALERT: Geomagnetic K-index of 7\r\nNOAA Scale: G3 - Strong\r\n"},
	  {"product_id": "EF3A", "issue_datetime": "2024-05-10 12:00:00.000",
	   "message": "SUMMARY: Proton Event 10MeV Integral Flux exceeded 10pfu\r\n"}
	]`
	recs, err := parseSWPCAlerts([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.InDelta(t, 3.0, recs[0].FloatOr("scale", 0), 1e-9)
	assert.Equal(t, "G3 - Strong", recs[0].String("scale_label"))
	assert.Equal(t, "Geomagnetic K-index of 7", recs[0].String("title"))
	assert.Equal(t, "ALERT", recs[0].String("kind"))

	_, ok := recs[1].Float("scale")
	assert.False(t, ok)
	assert.Equal(t, "Proton Event 10MeV Integral Flux exceeded 10pfu", recs[1].String("title"))
}

func TestParseHANS(t *testing.T) {
	body := `[
	  {"vnum": "311120", "volcano_name": "Great Sitkin", "obs_abbr": "avo", "alert_level": "watch",
	   "color_code": "orange", "sent_utc": "2024-05-10 18:22:11", "notice_url": "https://volcanoes.usgs.gov/hans2/view/notice/1"},
	  {"notice_identifier": "DOI-USGS-HVO-2024-05-10T10:00:00-07:00", "volcano_name": "Kilauea",
	   "obs_fullname": "Hawaiian Volcano Observatory", "alert_level": "ADVISORY", "color_code": "YELLOW"}
	]`
	recs, err := parseHANS([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "volcano-311120", recs[0].String("id"))
	assert.Equal(t, "WATCH", recs[0].String("alert_level"))
	assert.Equal(t, "ORANGE", recs[0].String("color_code"))
	assert.Equal(t, "AVO", recs[0].String("observatory"))
	assert.Equal(t, "DOI-USGS-HVO-2024-05-10T10:00:00-07:00", recs[1].String("id"))
	assert.Equal(t, "Hawaiian Volcano Observatory", recs[1].String("observatory"))
}

func TestParseTsunami_ArrayAndWrapped(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"id": "1", "location": "Off the coast of Chile", "magnitude": 7.8, "time": "2024-05-10T00:00:00Z", "category": "Warning"}]`},
		{"wrapped", `{"events": [{"id": "1", "region": "Pacific", "title": "Off the coast of Chile", "magnitude": "7.8", "issueTime": "2024-05-10T00:00:00Z", "type": "Warning"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := parseTsunami([]byte(tt.body), nil)
			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.Equal(t, "tsunami-1", recs[0].String("id"))
			assert.Equal(t, "7.8", recs[0].String("magnitude"))
			assert.Equal(t, "Warning", recs[0].String("category"))
			assert.NotEmpty(t, recs[0].String("location"))
		})
	}
}

func TestParseNHC(t *testing.T) {
	body := `{"activeStorms": [
	  {"id": "al052024", "binNumber": "AT5", "name": "Ernesto", "classification": "HU", "intensity": "85",
	   "pressure": "968", "latitude": "25.1N", "longitude": "65.4W", "movementDir": 0, "movementSpeed": 12,
	   "lastUpdate": "2024-08-16T15:00:00.000Z", "publicAdvisory": {"url": "https://www.nhc.noaa.gov/text/MIATCPAT5.shtml"}},
	  {"id": "ep062024", "binNumber": "EP1", "name": "Fabio", "classification": "TS", "intensity": "40"}
	]}`
	recs, err := parseNHC([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Hurricane", recs[0].String("classification"))
	assert.Equal(t, "atlantic", recs[0].String("basin"))
	assert.InDelta(t, 85.0, recs[0].FloatOr("intensity", 0), 1e-9)
	assert.InDelta(t, 968.0, recs[0].FloatOr("pressure", 0), 1e-9)
	assert.Equal(t, "25.1N 65.4W", recs[0].String("location"))
	assert.Equal(t, "eastern_pacific", recs[1].String("basin"))
}

func TestParseNWS(t *testing.T) {
	recs, err := parseNWS([]byte(nwsFixture), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "extreme", recs[0].String("severity"))
	assert.Equal(t, "Tornado Warning", recs[0].String("event"))
	assert.Equal(t, "Dallas, TX", recs[0].String("location"))
	assert.Equal(t, "2024-05-10T18:01:00-05:00", recs[0].String("time"))
	assert.Equal(t, "Flood Watch", recs[1].String("title"), "event stands in for a missing headline")
	assert.Equal(t, "2024-05-10T12:00:00-05:00", recs[1].String("time"), "sent stands in for a missing effective time")
}

func TestParseNIFC(t *testing.T) {
	body := `{"features": [
	  {"attributes": {"IrwinID": "{ABC-123}", "IncidentName": "Park", "POOState": "US-CA", "POOCounty": "Butte",
	   "IncidentSize": 429603, "PercentContained": 100, "FireDiscoveryDateTime": 1721857200000}},
	  {"attributes": {"IncidentName": ""}}
	]}`
	recs, err := parseNIFC([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "abc-123", recs[0].String("id"))
	assert.Equal(t, "CA", recs[0].String("state"))
	assert.Equal(t, "Park, Butte, CA", recs[0].String("location"))
	assert.InDelta(t, 429603.0, recs[0].FloatOr("acres", 0), 1e-9)
}

func TestParseNIFC_ArcGISError(t *testing.T) {
	_, err := parseNIFC([]byte(`{"error": {"code": 400, "message": "Invalid query"}}`), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid query")
}

func TestParseNWPS(t *testing.T) {
	body := `{"gauges": [
	  {"lid": "HOUT2", "name": "Buffalo Bayou at Houston", "state": {"abbreviation": "TX"},
	   "status": {"observed": {"primary": 31.2, "primaryUnit": "ft", "floodCategory": "major", "validTime": "2024-05-10T12:00:00Z"}}},
	  {"lid": "SACC1", "name": "Sacramento River", "state": {"abbreviation": "CA"},
	   "status": {"observed": {"floodCategory": "minor"}}},
	  {"lid": "DRY01", "name": "Dry Creek", "state": {"abbreviation": "TX"},
	   "status": {"observed": {"floodCategory": "no_flooding"}}}
	]}`

	recs, err := parseNWPS([]byte(body), Query{})
	require.NoError(t, err)
	require.Len(t, recs, 2, "gauges below action stage are skipped")

	recs, err = parseNWPS([]byte(body), Query{"state": "tx"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "major", recs[0].String("stage"))
	assert.Equal(t, "Buffalo Bayou at Houston, TX", recs[0].String("location"))
	assert.InDelta(t, 31.2, recs[0].FloatOr("observed", 0), 1e-9)
}

func TestParseNWPS_MissingArray(t *testing.T) {
	_, err := parseNWPS([]byte(`{}`), nil)
	assert.ErrorIs(t, err, errNoGauges)
}

func TestParseAirNow(t *testing.T) {
	body := `[
	  {"DateObserved": "2024-05-10 ", "HourObserved": 14, "ReportingArea": "Los Angeles", "StateCode": "CA",
	   "ParameterName": "PM2.5", "AQI": 160, "Category": {"Number": 4, "Name": "Unhealthy"}},
	  {"DateIssue": "2024-05-10", "DateForecast": "2024-05-11 ", "ReportingArea": "Los Angeles", "StateCode": "CA",
	   "ParameterName": "O3", "AQI": -1, "Category": {"Number": 2, "Name": "Moderate"}, "Discussion": "Hot"}
	]`
	recs, err := parseAirNow([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "pm25", recs[0].String("parameter"))
	assert.InDelta(t, 160.0, recs[0].FloatOr("aqi", 0), 1e-9)
	assert.Equal(t, "2024-05-10 14:00", recs[0].String("time"))
	assert.Equal(t, "Los Angeles, CA", recs[0].String("location"))

	assert.Equal(t, "o3", recs[1].String("parameter"))
	assert.True(t, recs[1].Bool("forecast"))
	_, ok := recs[1].Float("aqi")
	assert.False(t, ok, "forecasts without a numeric AQI carry none")
}

func TestParseOpenAQ(t *testing.T) {
	body := `{"results": [{"location": "Berlin Mitte", "city": "Berlin", "country": "DE", "measurements": [
	  {"parameter": "pm25", "value": 12.0, "unit": "µg/m³", "lastUpdated": "2024-05-10T12:00:00+00:00"},
	  {"parameter": "no2", "value": 0.02, "unit": "ppm", "lastUpdated": "2024-05-10T12:00:00+00:00"},
	  {"parameter": "bc", "value": 1.1, "unit": "µg/m³", "lastUpdated": "2024-05-10T12:00:00+00:00"}
	]}]}`
	recs, err := parseOpenAQ([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.InDelta(t, 56.0, recs[0].FloatOr("aqi", 0), 1e-9)
	assert.InDelta(t, 19.0, recs[1].FloatOr("aqi", 0), 1e-9)
	_, ok := recs[2].Float("aqi")
	assert.False(t, ok, "pollutants without a table carry no AQI")
	assert.Equal(t, "Berlin Mitte, Berlin, DE", recs[0].String("location"))
}

func TestParseUSDM_NewestFirst(t *testing.T) {
	body := `[
	  {"MapDate": "20240102", "StateAbbreviation": "CA", "None": "60.0", "D0": "40.0", "D1": "10.0", "D2": "0.0", "D3": "0.0", "D4": "0.0", "ValidStart": "2024-01-02"},
	  {"MapDate": "20240130", "StateAbbreviation": "CA", "None": 50, "D0": 50, "D1": 20, "D2": 5, "D3": 0, "D4": 0, "ValidStart": "2024-01-30"}
	]`
	recs, err := parseUSDM([]byte(body), Query{"state": "CA"})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "20240130", recs[0].String("map_date"))
	assert.InDelta(t, 5.0, recs[0].FloatOr("d2", -1), 1e-9)
	assert.InDelta(t, 40.0, recs[1].FloatOr("d0", -1), 1e-9)
	assert.Equal(t, "CA", recs[0].String("state"))
}

func TestParseNTAS(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<alerts>
  <alert start="2024/01/01 12:00" end="2024/07/01 12:00" type="Elevated Threat" href="https://www.dhs.gov/ntas/advisory/1">
    <summary>Heightened threat environment</summary>
    <details>Details here</details>
    <locations><location>United States</location></locations>
    <sectors><sector>All</sector><sector>Transportation</sector></sectors>
  </alert>
</alerts>`
	recs, err := parseNTAS([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "Elevated Threat", recs[0].String("ntas_type"))
	assert.Equal(t, "Heightened threat environment", recs[0].String("title"))
	assert.Equal(t, []string{"All", "Transportation"}, recs[0].Strings("sectors"))
	ts, ok := recs[0].Time("time")
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
}

func TestParseNTAS_NoBulletins(t *testing.T) {
	recs, err := parseNTAS([]byte(`<alerts/>`), nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestParseTravel(t *testing.T) {
	body := `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <item>
    <title>Afghanistan - Level 4: Do Not Travel</title>
    <link>https://travel.state.gov/afghanistan</link>
    <pubDate>Mon, 01 Jan 2024 00:00:00 -0500</pubDate>
    <category domain="Country-Tag">af</category>
    <category domain="Threat-Level">Level 4: Do Not Travel</category>
  </item>
  <item>
    <title>France - Level 2: Exercise Increased Caution</title>
    <link>https://travel.state.gov/france</link>
    <category domain="Country-Tag">FR</category>
  </item>
</channel></rss>`
	recs, err := parseTravel([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Afghanistan", recs[0].String("country"))
	assert.Equal(t, "AF", recs[0].String("country_code"))
	assert.InDelta(t, 4.0, recs[0].FloatOr("travel_level", 0), 1e-9)
	assert.InDelta(t, 2.0, recs[1].FloatOr("travel_level", 0), 1e-9)
}

func TestParseCISA(t *testing.T) {
	body := `{"vulnerabilities": [
	  {"cveID": "CVE-2024-1234", "vendorProject": "Acme", "product": "Router", "vulnerabilityName": "Acme Router RCE",
	   "dateAdded": "2024-05-10", "knownRansomwareCampaignUse": "Known"},
	  {"cveID": "CVE-2024-5678", "vendorProject": "Acme", "product": "VPN", "vulnerabilityName": "Acme VPN Bypass",
	   "dateAdded": "2024-05-09", "knownRansomwareCampaignUse": "Unknown"}
	]}`
	recs, err := parseCISA([]byte(body), nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "known", recs[0].String("ransomware"))
	assert.Equal(t, "CVE-2024-1234: Acme Router RCE", recs[0].String("title"))
	assert.Equal(t, "Acme Router", recs[0].String("location"))
}
