package feeds

import (
	"math"
	"strings"
)

// breakpoint is one row of the EPA AQI table: concentrations lo..hi map
// linearly onto index values aqiLo..aqiHi.
type breakpoint struct {
	lo, hi       float64
	aqiLo, aqiHi float64
}

// aqiTable holds the breakpoints of one pollutant in its reporting unit,
// plus the decimal places concentrations are truncated to first.
type aqiTable struct {
	unit     string
	decimals int
	rows     []breakpoint
}

// EPA AQI breakpoints (PM2.5 per the 2024 revision).
var aqiTables = map[string]aqiTable{
	"pm25": {unit: "µg/m³", decimals: 1, rows: []breakpoint{
		{0.0, 9.0, 0, 50}, {9.1, 35.4, 51, 100}, {35.5, 55.4, 101, 150},
		{55.5, 125.4, 151, 200}, {125.5, 225.4, 201, 300}, {225.5, 325.4, 301, 500},
	}},
	"pm10": {unit: "µg/m³", decimals: 0, rows: []breakpoint{
		{0, 54, 0, 50}, {55, 154, 51, 100}, {155, 254, 101, 150},
		{255, 354, 151, 200}, {355, 424, 201, 300}, {425, 604, 301, 500},
	}},
	"o3": {unit: "ppm", decimals: 3, rows: []breakpoint{
		{0.000, 0.054, 0, 50}, {0.055, 0.070, 51, 100}, {0.071, 0.085, 101, 150},
		{0.086, 0.105, 151, 200}, {0.106, 0.200, 201, 300},
	}},
	"no2": {unit: "ppb", decimals: 0, rows: []breakpoint{
		{0, 53, 0, 50}, {54, 100, 51, 100}, {101, 360, 101, 150},
		{361, 649, 151, 200}, {650, 1249, 201, 300}, {1250, 2049, 301, 500},
	}},
	"so2": {unit: "ppb", decimals: 0, rows: []breakpoint{
		{0, 35, 0, 50}, {36, 75, 51, 100}, {76, 185, 101, 150},
		{186, 304, 151, 200}, {305, 604, 201, 300}, {605, 1004, 301, 500},
	}},
	"co": {unit: "ppm", decimals: 1, rows: []breakpoint{
		{0.0, 4.4, 0, 50}, {4.5, 9.4, 51, 100}, {9.5, 12.4, 101, 150},
		{12.5, 15.4, 151, 200}, {15.5, 30.4, 201, 300}, {30.5, 50.4, 301, 500},
	}},
}

// molecularWeight converts gas mass concentrations to mixing ratios at 25 °C.
var molecularWeight = map[string]float64{
	"o3":  48.00,
	"no2": 46.01,
	"so2": 64.07,
	"co":  28.01,
}

// ComputeAQI converts a concentration to the EPA index. It reports false for
// pollutants without a table and units it cannot convert.
func ComputeAQI(parameter string, value float64, unit string) (int, bool) {
	param := NormalizeParameter(parameter)
	table, ok := aqiTables[param]
	if !ok || value < 0 || math.IsNaN(value) {
		return 0, false
	}
	c, ok := convertUnit(param, value, unit, table.unit)
	if !ok {
		return 0, false
	}
	scale := math.Pow(10, float64(table.decimals))
	c = math.Floor(c*scale+1e-9) / scale

	for _, bp := range table.rows {
		if c <= bp.hi {
			if c < bp.lo {
				// Concentration falls in the gap between two truncated rows.
				c = bp.lo
			}
			idx := (bp.aqiHi-bp.aqiLo)/(bp.hi-bp.lo)*(c-bp.lo) + bp.aqiLo
			return int(math.Round(idx)), true
		}
	}
	return 500, true
}

func convertUnit(param string, value float64, from, to string) (float64, bool) {
	from = canonicalUnit(from)
	if from == "" || from == to {
		return value, true
	}
	mw, gas := molecularWeight[param]
	switch {
	case from == "ppm" && to == "ppb":
		return value * 1000, true
	case from == "ppb" && to == "ppm":
		return value / 1000, true
	case from == "µg/m³" && gas && to == "ppb":
		return value * 24.45 / mw, true
	case from == "µg/m³" && gas && to == "ppm":
		return value * 24.45 / mw / 1000, true
	}
	return 0, false
}

func canonicalUnit(u string) string {
	switch strings.ToLower(strings.TrimSpace(u)) {
	case "":
		return ""
	case "ppm":
		return "ppm"
	case "ppb":
		return "ppb"
	case "µg/m³", "ug/m3", "µg/m3", "ug/m³":
		return "µg/m³"
	}
	return u
}

// NormalizeParameter maps feed spellings ("PM2.5", "OZONE") onto the short
// parameter names used by tier limits.
func NormalizeParameter(p string) string {
	s := strings.ToLower(strings.TrimSpace(p))
	s = strings.NewReplacer(".", "", "_", "", " ", "").Replace(s)
	switch s {
	case "ozone":
		return "o3"
	case "pm2", "pm25":
		return "pm25"
	}
	return s
}
