// Package render turns ranked pages of hazard events into the plain-text
// reports returned by every check.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/aggregate"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/entitlement"
)

// TimeLayout is used for every timestamp shown to callers.
const TimeLayout = "2006-01-02 15:04 UTC"

// Section is one ranked list within a report.
type Section struct {
	Heading string
	Page    aggregate.Page
	// Empty is shown when the page has no events.
	Empty string
	// Noun names the items in the overflow line ("alerts", "storms").
	Noun string
	// Item overrides the category formatter.
	Item func(domain.Event) string
}

// Report is the input of Render.
type Report struct {
	Title    string
	Filters  []string
	Sections []Section
	Footer   []string
	// Upsell, when set, follows the overflow line of a truncated section.
	Upsell string
}

// Render writes the report followed by the downgrade notes carried in
// decisions and the tier note.
func Render(r Report, decisions entitlement.Decisions, tierNote string) string {
	var b strings.Builder
	b.WriteString(r.Title)
	b.WriteString("\n\n")

	for _, f := range r.Filters {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	if len(r.Filters) > 0 {
		b.WriteByte('\n')
	}

	for _, s := range r.Sections {
		writeSection(&b, s, r.Upsell)
	}

	for _, note := range decisions.Notes() {
		b.WriteString("ℹ️ " + note + "\n")
	}
	if tierNote != "" {
		b.WriteString("💡 " + tierNote + "\n")
	}
	for _, f := range r.Footer {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, s Section, upsell string) {
	if s.Heading != "" {
		fmt.Fprintf(b, "**%s:**\n", s.Heading)
	}
	if len(s.Page.Events) == 0 {
		b.WriteString(s.Empty)
		b.WriteString("\n\n")
		return
	}

	item := s.Item
	if item == nil {
		item = Event
	}
	for _, e := range s.Page.Events {
		b.WriteString(item(e))
		b.WriteByte('\n')
	}
	if s.Page.Remainder > 0 {
		noun := s.Noun
		if noun == "" {
			noun = "alerts"
		}
		fmt.Fprintf(b, "... and %d more %s\n", s.Page.Remainder, noun)
		if upsell != "" {
			b.WriteString("⭐ " + upsell + "\n")
		}
	}
	b.WriteByte('\n')
}

// Blocked renders a short-circuited check.
func Blocked(d entitlement.Decision) string {
	return fmt.Sprintf("🔒 %s\n\n%s", d.Reason, d.Upsell)
}

// FetchFailure renders the failure of a single-feed check.
func FetchFailure(hazard string, err error) string {
	return fmt.Sprintf("❌ Error fetching %s data: %v", hazard, err)
}

// Unexpected renders a recovered panic or internal error.
func Unexpected(hazard string, v any) string {
	return fmt.Sprintf("❌ Unexpected error in %s monitoring: %v", hazard, v)
}

// AlertConfigUpdated echoes a merged alert rule.
func AlertConfigUpdated(alertType string, merged []byte) string {
	return fmt.Sprintf("✅ Updated %s alert configuration: %s", alertType, merged)
}

// UnknownAlertType rejects an update for a category without rules.
func UnknownAlertType(alertType string) string {
	return "❌ Unknown alert type: " + alertType
}

// Timestamp formats an event time, or "Unknown time".
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "Unknown time"
	}
	return t.UTC().Format(TimeLayout)
}

// MoreResults is the upsell shown under truncated free-tier sections.
func MoreResults(premiumCap int) string {
	return fmt.Sprintf("Upgrade to WEMS Premium for up to %d results per request.", premiumCap)
}
