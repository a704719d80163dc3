package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

var threatSources = map[string]struct {
	feed  feeds.Feed
	kind  string
	label string
}{
	"terrorism": {feeds.NTASBulletins, "ntas", "DHS NTAS"},
	"travel":    {feeds.TravelAdvisories, "travel", "State Dept"},
	"cyber":     {feeds.CISAKEV, "kev", "CISA"},
}

// kevWindow bounds known exploited vulnerabilities unless history is requested.
const kevWindow = 30 * 24 * time.Hour

func (p *Pipeline) threatAdvisories(ctx context.Context, c *call) string {
	types := mapStrings(c.args.Strings("threat_types", []string{"terrorism"}), strings.ToLower)
	levels := mapStrings(c.args.Strings("threat_levels", nil), strings.ToLower)
	countries := mapStrings(c.args.Strings("countries", nil), strings.ToLower)
	region := strings.ToLower(c.args.String("region", ""))
	historical := c.args.Bool("include_historical")
	expired := c.args.Bool("include_expired")

	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.ThreatHistorical, historical, "Historical threat data requires WEMS Premium"),
		c.guard.Feature(tier.ThreatExpired, expired, "Expired advisories require WEMS Premium"),
		c.guard.Feature(tier.ThreatCountries, len(countries) > 0, "Country filtering requires WEMS Premium"),
		c.guard.Feature(tier.ThreatRegion, region != "", "Region filtering requires WEMS Premium"),
		c.guard.OneOf(tier.ThreatTypes, types, "Requested threat types require WEMS Premium"),
	); blocked {
		return msg
	}

	var srcs []source
	var labels []string
	for _, t := range types {
		ts, ok := threatSources[t]
		if !ok {
			continue
		}
		srcs = append(srcs, source{ts.feed, nil, domain.ThreatAdvisory, ts.kind})
		labels = append(labels, ts.label)
	}
	if len(srcs) == 0 {
		c.outcome = outcomeInvalid
		return fmt.Sprintf("❌ Unknown threat types: %s", strings.Join(types, ", "))
	}

	streams, errs := p.fetchAll(ctx, srcs)
	if err := allFailed(errs); err != nil {
		return p.fetchFailed(c, "threat advisory", err)
	}

	now := domain.Now()
	page := p.merge(streams, c.pageSize(tier.ThreatMaxResults), 0, func(e domain.Event) bool {
		if !expired {
			if until, ok := domain.ParseTime(e.Payload["expires"]); ok && until.Before(now) {
				return false
			}
		}
		if !historical && e.SourceKind == "kev" && e.HasTime() && e.OccurredAt.Before(now.Add(-kevWindow)) {
			return false
		}
		if len(levels) > 0 && !matchesAny(strings.ToLower(e.Class), levels) {
			return false
		}
		if len(countries) > 0 && e.SourceKind == "travel" {
			if !matchesAny(strings.ToLower(e.Payload.String("country")), countries) &&
				!containsFold(countries, e.Payload.String("country_code")) {
				return false
			}
		}
		if region != "" {
			text := strings.ToLower(e.Location + " " + e.Payload.String("title"))
			return strings.Contains(text, region)
		}
		return true
	})
	p.surface(ctx, c, ThreatAdvisories, page)

	var filters []string
	filters = append(filters, "🎯 Threat types: "+strings.Join(types, ", "))
	if len(countries) > 0 {
		filters = append(filters, "🌐 Countries: "+strings.Join(countries, ", "))
	}
	if region != "" {
		filters = append(filters, "🌍 Region filter: "+c.args.String("region", ""))
	}

	tierNote := ""
	if !c.premium() {
		tierNote = "Free tier: US terrorism advisories only"
	}
	return render.Render(render.Report{
		Title:   "🛡️ **Threat Advisory Report**",
		Filters: filters,
		Sections: []render.Section{{
			Heading: "Active Advisories",
			Page:    page,
			Empty:   "🟢 No active threat advisories",
			Noun:    "advisories",
		}},
		Footer: []string{"🔍 Data sources: " + strings.Join(labels, ", ")},
		Upsell: c.upsell(tier.ThreatMaxResults),
	}, c.decisions, tierNote)
}

// matchesAny reports whether s contains any of subs.
func matchesAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
