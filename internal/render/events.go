package render

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

var formatters = map[domain.Category]func(domain.Event) string{
	domain.Earthquake:     earthquake,
	domain.Solar:          solarEvent,
	domain.SpaceWeather:   spaceAlert,
	domain.Volcano:        volcano,
	domain.Tsunami:        tsunami,
	domain.Hurricane:      hurricane,
	domain.Wildfire:       wildfire,
	domain.SevereWeather:  severeWeather,
	domain.Flood:          flood,
	domain.AirQuality:     airQuality,
	domain.ThreatAdvisory: threat,
}

// Event formats one list item with its category formatter.
func Event(e domain.Event) string {
	if f, ok := formatters[e.Category]; ok {
		return f(e)
	}
	return fmt.Sprintf("• %s - %s", e.Class, e.Location)
}

func earthquake(e domain.Event) string {
	mag := e.Payload.FloatOr("magnitude", 0)
	icon := "•"
	switch {
	case mag >= 7:
		icon = "🔴"
	case mag >= 6:
		icon = "🟠"
	case mag >= 5:
		icon = "🟡"
	}
	line := fmt.Sprintf("%s %.1f - %s\n   %s", icon, mag, e.Location, Timestamp(e.OccurredAt))
	if depth, ok := e.Payload.Float("depth"); ok {
		line += fmt.Sprintf(" | Depth: %.1f km", depth)
	}
	if e.Payload.Bool("tsunami") {
		line += "\n   🌊 Tsunami evaluation issued"
	}
	return line
}

// KIndex renders the latest geomagnetic reading.
func KIndex(e domain.Event) string {
	kp := e.Payload.FloatOr("kp_index", 0)
	icon := "🔵"
	switch {
	case kp >= 7:
		icon = "🔴"
	case kp >= 5:
		icon = "🟠"
	case kp >= 4:
		icon = "🟡"
	case kp >= 3:
		icon = "🟢"
	}
	return fmt.Sprintf("%s K=%.1f - %s\nLatest reading: %s", icon, kp, e.Class, Timestamp(e.OccurredAt))
}

var solarTypes = map[string]struct{ icon, label string }{
	"XRA": {"☀️", "Solar Flare"},
	"FLA": {"☀️", "Solar Flare"},
	"CME": {"🌪️", "Coronal Mass Ejection"},
	"RBR": {"📡", "Radio Burst"},
	"RSP": {"📡", "Radio Sweep"},
	"PRO": {"☢️", "Proton Event"},
	"PCA": {"☢️", "Polar Cap Absorption"},
}

func solarEvent(e domain.Event) string {
	if _, ok := e.Payload.Float("kp_index"); ok {
		return KIndex(e)
	}
	typ := e.Payload.String("type")
	icon, label := "⭐", typ
	if t, ok := solarTypes[strings.ToUpper(typ)]; ok {
		icon, label = t.icon, t.label
	}
	if label == "" {
		label = "Space weather event"
	}
	line := fmt.Sprintf("%s %s (%s)", icon, label, Timestamp(e.OccurredAt))
	if msg := e.Payload.String("message"); msg != "" {
		line += "\n   " + truncate(msg, 160)
	}
	return line
}

func spaceAlert(e domain.Event) string {
	scale := e.Payload.FloatOr("scale", 0)
	icon := "⚪"
	switch {
	case scale >= 4:
		icon = "🔴"
	case scale >= 3:
		icon = "🟠"
	case scale >= 2:
		icon = "🟡"
	case scale >= 1:
		icon = "🟢"
	}
	head := e.Payload.String("kind")
	if label := e.Payload.String("scale_label"); label != "" {
		head = label
	}
	return fmt.Sprintf("%s %s: %s\n   Issued: %s", icon, head, e.Payload.String("title"), Timestamp(e.OccurredAt))
}

var volcanoIcons = map[string]string{
	"WARNING":  "🔴",
	"WATCH":    "🟠",
	"ADVISORY": "🟡",
	"NORMAL":   "🟢",
}

func volcano(e domain.Event) string {
	icon, ok := volcanoIcons[e.Class]
	if !ok {
		icon = "⚪"
	}
	line := fmt.Sprintf("%s **%s** - %s", icon, e.Payload.String("name"), e.Class)
	if color := e.Payload.String("color_code"); color != "" {
		line += " (" + color + ")"
	}
	line += fmt.Sprintf("\n   %s | %s", e.Payload.String("observatory"), Timestamp(e.OccurredAt))
	if syn := e.Payload.String("synopsis"); syn != "" {
		line += "\n   " + truncate(syn, 200)
	}
	return line
}

func tsunami(e domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **%s**\n   Category: %s", e.Location, e.Class)
	if mag := e.Payload.String("magnitude"); mag != "" {
		fmt.Fprintf(&b, "\n   Magnitude: %s", mag)
	}
	fmt.Fprintf(&b, "\n   Time: %s", Timestamp(e.OccurredAt))
	return b.String()
}

func hurricane(e domain.Event) string {
	if e.SourceKind == "alert" {
		return fmt.Sprintf("⚠️ %s - %s\n   Severity: %s | %s",
			e.Payload.String("event"), e.Location, e.Payload.String("severity"), Timestamp(e.OccurredAt))
	}
	icon := "🟡"
	switch {
	case e.SeverityRank <= 4:
		icon = "🔴🌀"
	case e.SeverityRank == 5:
		icon = "🟠🌀"
	}
	line := fmt.Sprintf("%s **%s** (%s)", icon, e.Payload.String("title"), e.Class)
	if wind, ok := e.Payload.Float("intensity"); ok {
		line += fmt.Sprintf("\n   Winds: %.0f kt", wind)
		if p, ok := e.Payload.Float("pressure"); ok {
			line += fmt.Sprintf(" | Pressure: %.0f mb", p)
		}
	}
	line += "\n   Location: " + e.Location
	if mv := e.Payload.String("movement"); mv != "" {
		line += " | Movement: " + mv
	}
	if url := e.Payload.String("forecast_url"); url != "" {
		line += "\n   Forecast: " + url
	}
	return line
}

func wildfire(e domain.Event) string {
	if e.SourceKind == "incident" {
		return fmt.Sprintf("🔥 **%s** (%s)\n   %s acres | %.0f%% contained",
			e.Payload.String("name"), e.Payload.String("state"),
			thousands(e.Payload.FloatOr("acres", 0)), e.Payload.FloatOr("contained", 0))
	}
	return fmt.Sprintf("%s %s - %s\n   Severity: %s | Expires: %s",
		severityIcon(e.Payload.String("severity")), e.Payload.String("event"), e.Location,
		e.Payload.String("severity"), e.Payload.String("expires"))
}

func severeWeather(e domain.Event) string {
	event := e.Payload.String("event")
	line := fmt.Sprintf("%s%s **%s** - %s\n   Severity: %s | Urgency: %s | %s",
		severityIcon(e.Payload.String("severity")), weatherIcon(event), event, e.Location,
		e.Payload.String("severity"), e.Payload.String("urgency"), Timestamp(e.OccurredAt))
	if title := e.Payload.String("title"); title != "" && title != event {
		line += "\n   " + truncate(title, 200)
	}
	return line
}

func weatherIcon(event string) string {
	lower := strings.ToLower(event)
	switch {
	case strings.Contains(lower, "tornado"):
		return "🌪️"
	case strings.Contains(lower, "thunderstorm"):
		return "⛈️"
	case strings.Contains(lower, "winter"), strings.Contains(lower, "blizzard"), strings.Contains(lower, "ice"):
		return "❄️"
	case strings.Contains(lower, "flood"):
		return "🌊"
	case strings.Contains(lower, "heat"):
		return "🌡️"
	}
	return "⚠️"
}

func severityIcon(severity string) string {
	switch strings.ToLower(severity) {
	case "extreme":
		return "🔴"
	case "severe":
		return "🟠"
	case "moderate":
		return "🟡"
	}
	return "🔵"
}

var stageIcons = map[string]string{
	"major":    "🔴",
	"moderate": "🟠",
	"minor":    "🟡",
	"action":   "🔵",
}

func flood(e domain.Event) string {
	icon := stageIcons[e.Class]
	if e.SourceKind == "gauge" {
		line := fmt.Sprintf("%s📊 River Gauge: **%s** (%s)\n   Stage: %s",
			icon, e.Payload.String("name"), strings.TrimPrefix(e.ID, "gauge-"), e.Class)
		if level, ok := e.Payload.Float("observed"); ok {
			line += fmt.Sprintf(" | Level: %.1f %s", level, e.Payload.String("unit"))
		}
		return line
	}
	return fmt.Sprintf("%s🌊 **%s** - %s\n   Severity: %s | %s",
		icon, e.Payload.String("event"), e.Location, e.Payload.String("severity"), Timestamp(e.OccurredAt))
}

var aqiIcons = map[string]string{
	"good":           "🟢",
	"moderate":       "🟡",
	"usg":            "🟠",
	"unhealthy":      "🔴",
	"very_unhealthy": "🟣",
	"hazardous":      "🟤",
}

var aqiLabels = map[string]string{
	"good":           "Good",
	"moderate":       "Moderate",
	"usg":            "Unhealthy for Sensitive Groups",
	"unhealthy":      "Unhealthy",
	"very_unhealthy": "Very Unhealthy",
	"hazardous":      "Hazardous",
}

func airQuality(e domain.Event) string {
	icon, ok := aqiIcons[e.Class]
	if !ok {
		icon = "⚪"
	}
	param := strings.ToUpper(e.Payload.String("parameter"))
	line := fmt.Sprintf("%s **%s** - %s", icon, e.Payload.String("station"), param)
	if aqi, ok := e.Payload.Float("aqi"); ok {
		line += fmt.Sprintf(": AQI %.0f (%s)", aqi, aqiLabels[e.Class])
	} else if v, ok := e.Payload.Float("value"); ok {
		line += fmt.Sprintf(": %.1f %s", v, e.Payload.String("unit"))
	}
	if e.Payload.Bool("forecast") {
		line += " [Forecast]"
	}
	return line + "\n   " + Timestamp(e.OccurredAt)
}

func threat(e domain.Event) string {
	icon := "🔵"
	switch {
	case e.SeverityRank <= 1:
		icon = "🔴"
	case e.SeverityRank <= 3:
		icon = "🟠"
	case e.SeverityRank <= 5:
		icon = "🟡"
	}
	switch {
	case e.Payload.String("ntas_type") != "":
		line := fmt.Sprintf("%s **DHS NTAS: %s**\n   %s", icon, e.Payload.String("ntas_type"), e.Payload.String("title"))
		if sectors := e.Payload.Strings("sectors"); len(sectors) > 0 {
			line += "\n   Sectors: " + strings.Join(sectors, ", ")
		}
		if exp := e.Payload.String("expires"); exp != "" {
			line += "\n   Expires: " + exp
		}
		return line
	case e.Payload.String("cve") != "":
		line := fmt.Sprintf("%s **%s** %s (CISA KEV)\n   %s", icon, e.Payload.String("cve"), e.Location, e.Payload.String("title"))
		if e.Class == "Ransomware" {
			line += "\n   Known ransomware use"
		}
		return line
	}
	return fmt.Sprintf("%s **%s** - %s (State Dept)\n   %s",
		icon, e.Payload.String("country"), e.Class, e.Payload.String("title"))
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// thousands renders a whole number with comma separators.
func thousands(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
