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

func (p *Pipeline) solar(ctx context.Context, c *call) string {
	types := mapStrings(c.args.Strings("event_types", nil), strings.ToLower)

	streams, errs := p.fetchAll(ctx, []source{
		{feeds.SWPCKIndex, nil, domain.Solar, "kindex"},
		{feeds.SWPCEvents, nil, domain.Solar, "event"},
	})
	if err := allFailed(errs); err != nil {
		return p.fetchFailed(c, "space weather", err)
	}

	// The k-index parser keeps only the latest reading.
	kindex := p.merge(streams[:1], 1, 0, nil)

	window := c.guard.Policy().Window(tier.SolarLookback)
	events := p.merge(streams[1:], c.pageSize(tier.SolarMaxEvents), window, func(e domain.Event) bool {
		if len(types) == 0 {
			return true
		}
		typ := strings.ToLower(e.Payload.String("type") + " " + e.Payload.String("message"))
		for _, t := range types {
			if strings.Contains(typ, t) {
				return true
			}
		}
		return false
	})
	p.surface(ctx, c, Solar, kindex, events)

	hours := int(window / time.Hour)
	return render.Render(render.Report{
		Title: "🌞 **Space Weather Status**",
		Sections: []render.Section{
			{
				Heading: "Geomagnetic Activity (K-index)",
				Page:    kindex,
				Empty:   "⚪ No K-index reading available",
				Item:    render.KIndex,
			},
			{
				Heading: fmt.Sprintf("Recent Space Weather Events (%dh)", hours),
				Page:    events,
				Empty:   fmt.Sprintf("🟢 No significant events in the last %d hours", hours),
				Noun:    "events",
			},
		},
		Footer: []string{"🔍 Data source: NOAA Space Weather Prediction Center"},
		Upsell: c.upsell(tier.SolarMaxEvents),
	}, c.decisions, "")
}

func (p *Pipeline) spaceWeatherAlerts(ctx context.Context, c *call) string {
	hoursBack := c.guard.Ceiling(tier.SpaceAlertsHoursBack, c.args.Float("hours_back", 24), "hours back")
	if msg, blocked := p.gate(c, hoursBack); blocked {
		return msg
	}
	hours := int(hoursBack.Float())

	events, err := p.fetchOne(ctx, source{feeds.SWPCAlerts, nil, domain.SpaceWeather, "alert"})
	if err != nil {
		return p.fetchFailed(c, "space weather alerts", err)
	}

	page := p.merge([][]domain.Event{events}, c.pageSize(tier.SpaceAlertsMaxResults), time.Duration(hours)*time.Hour, nil)
	p.surface(ctx, c, SpaceWeatherAlerts, page)

	return render.Render(render.Report{
		Title:   "🛰️ **Space Weather Alerts**",
		Filters: []string{fmt.Sprintf("⏱️ Last %d hours", hours)},
		Sections: []render.Section{{
			Heading: "Active Space Weather Alerts",
			Page:    page,
			Empty:   fmt.Sprintf("🟢 No alerts in the last %d hours", hours),
			Noun:    "alerts",
		}},
		Footer: []string{"🔍 Data source: NOAA Space Weather Prediction Center"},
		Upsell: c.upsell(tier.SpaceAlertsMaxResults),
	}, c.decisions, "")
}
