package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/couchcryptid/wems/internal/domain"
)

// TrendThreshold is the change in drought-affected area, in percentage
// points, below which the trend reads as stable.
const TrendThreshold = 1.0

var droughtRows = []struct {
	key, icon, label, short string
}{
	{"d4", "🔴", "Exceptional Drought", "Exceptional"},
	{"d3", "🟠", "Extreme Drought", "Extreme"},
	{"d2", "🟡", "Severe Drought", "Severe"},
	{"d1", "🟤", "Moderate Drought", "Moderate"},
	{"d0", "🟨", "Abnormally Dry", "Abnormal"},
}

// AffectedArea is the percentage of a state in any drought category.
func AffectedArea(e domain.Event) float64 {
	return 100 - e.Payload.FloatOr("none", 100)
}

// Drought renders a state's latest drought statistics. previous, when set,
// is an earlier week used for the trend section.
func Drought(state string, current domain.Event, previous *domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏜️ **Drought Status: %s**\n\n", state)
	fmt.Fprintf(&b, "📅 Current as of: %s\n\n", mapDate(current))

	worst := "🟢 No Drought"
	for _, row := range droughtRows {
		if current.Payload.FloatOr(row.key, 0) > 0 {
			worst = fmt.Sprintf("%s %s (%s)", row.icon, row.label, strings.ToUpper(row.key))
			break
		}
	}
	fmt.Fprintf(&b, "**Worst category:** %s\n\n", worst)

	b.WriteString("**Area by category:**\n")
	fmt.Fprintf(&b, "🟢 None: %.1f%%\n", current.Payload.FloatOr("none", 0))
	for i := len(droughtRows) - 1; i >= 0; i-- {
		row := droughtRows[i]
		fmt.Fprintf(&b, "%s %s (%s): %.1f%%\n", row.icon, strings.ToUpper(row.key), row.short, current.Payload.FloatOr(row.key, 0))
	}

	if previous != nil {
		b.WriteString("\n**4-Week Trend:**\n")
		now, then := AffectedArea(current), AffectedArea(*previous)
		diff := now - then
		switch {
		case diff > TrendThreshold:
			fmt.Fprintf(&b, "📈 Worsening: %.1f%% → %.1f%% in drought (+%.1f)\n", then, now, diff)
		case diff < -TrendThreshold:
			fmt.Fprintf(&b, "📉 Improving: %.1f%% → %.1f%% in drought (%.1f)\n", then, now, diff)
		default:
			fmt.Fprintf(&b, "➡️ Stable: %.1f%% in drought (%+.1f)\n", now, math.Round(diff*10)/10)
		}
	}

	b.WriteString("\n🔍 Data source: U.S. Drought Monitor")
	return b.String()
}

func mapDate(e domain.Event) string {
	if e.HasTime() {
		return e.OccurredAt.Format("2006-01-02")
	}
	if d := e.Payload.String("map_date"); d != "" {
		return d
	}
	return "Unknown"
}
