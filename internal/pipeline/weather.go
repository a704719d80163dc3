package pipeline

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/entitlement"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

// NWS event names requested per check.
const (
	tropicalEvents = "Hurricane Warning,Hurricane Watch,Tropical Storm Warning,Tropical Storm Watch,Storm Surge Warning"
	fireEvents     = "Red Flag Warning,Fire Weather Watch,Extreme Fire Behavior,Fire Warning"
	floodEvents    = "Flash Flood Warning,Flood Warning,Flash Flood Watch,Flood Watch,Flood Advisory"
)

var basinGroups = map[string][]string{
	"atlantic":        {"atlantic"},
	"eastern_pacific": {"eastern_pacific"},
	"central_pacific": {"central_pacific"},
	"pacific":         {"eastern_pacific", "central_pacific"},
	"all":             {"atlantic", "eastern_pacific", "central_pacific"},
}

var basinLabels = map[string]string{
	"atlantic":        "Atlantic",
	"eastern_pacific": "Eastern Pacific",
	"central_pacific": "Central Pacific",
	"pacific":         "Pacific",
	"all":             "All basins",
}

func (p *Pipeline) hurricanes(ctx context.Context, c *call) string {
	basin := strings.ToLower(c.args.String("basin", "atlantic"))
	basins, ok := basinGroups[basin]
	if !ok {
		c.outcome = outcomeInvalid
		return "❌ Unknown basin: " + basin + ". Use atlantic, eastern_pacific, central_pacific, pacific or all."
	}
	forecast := c.args.Bool("include_forecast")

	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.HurricaneForecast, forecast, "Forecast tracks require WEMS Premium"),
		c.guard.OneOf(tier.HurricaneBasin, basins, "Pacific basin requires WEMS Premium"),
	); blocked {
		return msg
	}

	streams, _ := p.fetchAll(ctx, []source{
		{feeds.NHCStorms, nil, domain.Hurricane, "storm"},
		{feeds.NWSAlerts, feeds.Query{"event": tropicalEvents}, domain.Hurricane, "alert"},
	})

	limit := c.pageSize(tier.HurricaneMaxResults)
	storms := p.merge(streams[:1], limit, 0, func(e domain.Event) bool {
		return slices.Contains(basins, e.Payload.String("basin"))
	})
	alerts := p.merge(streams[1:], limit, 0, nil)
	p.surface(ctx, c, Hurricanes, storms, alerts)

	item := render.Event
	footer := []string{"🔍 Data source: National Hurricane Center, National Weather Service"}
	if forecast {
		footer = append([]string{"📈 Forecast tracks included"}, footer...)
	} else {
		item = func(e domain.Event) string {
			e.Payload = without(e.Payload, "forecast_url")
			return render.Event(e)
		}
	}

	return render.Render(render.Report{
		Title:   "🌀 **Hurricane/Tropical Storm Status**",
		Filters: []string{"🌊 Basin: " + basinLabels[basin]},
		Sections: []render.Section{
			{
				Heading: "Active Storms",
				Page:    storms,
				Empty:   "🟢 No active hurricanes or tropical storms",
				Noun:    "storms",
				Item:    item,
			},
			{
				Heading: "Active Tropical Alerts",
				Page:    alerts,
				Empty:   "🟢 No active hurricane or tropical storm alerts",
				Noun:    "alerts",
			},
		},
		Footer: footer,
		Upsell: c.upsell(tier.HurricaneMaxResults),
	}, c.decisions, "")
}

func without(rec domain.Record, key string) domain.Record {
	if _, ok := rec[key]; !ok {
		return rec
	}
	out := maps.Clone(rec)
	delete(out, key)
	return out
}

func (p *Pipeline) wildfires(ctx context.Context, c *call) string {
	region := c.args.String("region", "")
	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.WildfireRegion, region != "", "Region filtering requires WEMS Premium"),
	); blocked {
		return msg
	}

	state, hasState := StateCode(region)
	alertQuery := feeds.Query{"event": fireEvents}
	if hasState {
		alertQuery["area"] = state
	}
	srcs := []source{{feeds.NWSAlerts, alertQuery, domain.Wildfire, "alert"}}
	incidents := c.guard.Policy().Allows(tier.WildfireLargeIncidents)
	if incidents {
		q := feeds.Query{"min_acres": "1000"}
		if hasState {
			q["state"] = state
		}
		srcs = append(srcs, source{feeds.NIFCIncidents, q, domain.Wildfire, "incident"})
	}

	streams, errs := p.fetchAll(ctx, srcs)
	if err := allFailed(errs); err != nil {
		return p.fetchFailed(c, "wildfire", err)
	}

	var filter func(domain.Event) bool
	if region != "" && !hasState {
		needle := strings.ToLower(region)
		filter = func(e domain.Event) bool { return strings.Contains(strings.ToLower(e.Location), needle) }
	}
	limit := c.pageSize(tier.WildfireMaxResults)
	alerts := p.merge(streams[:1], limit, 0, filter)
	sections := []render.Section{{
		Heading: "Fire Weather Alerts",
		Page:    alerts,
		Empty:   "🟢 No active fire weather alerts",
		Noun:    "alerts",
	}}

	var filters []string
	if region != "" {
		filters = append(filters, "📍 Region filter: "+region)
	}

	if incidents {
		fires := p.merge(streams[1:], limit, 0, filter)
		sections = append(sections, render.Section{
			Heading: "Active Large Fires",
			Page:    fires,
			Empty:   "🟢 No large wildfires currently active",
			Noun:    "fires",
		})
		p.surface(ctx, c, Wildfires, alerts, fires)
	} else {
		p.surface(ctx, c, Wildfires, alerts)
	}

	return render.Render(render.Report{
		Title:    "🔥 **Wildfire Activity Status**",
		Filters:  filters,
		Sections: sections,
		Footer:   []string{"🔍 Data source: National Weather Service, National Interagency Fire Center"},
		Upsell:   c.upsell(tier.WildfireMaxResults),
	}, c.decisions, "")
}

func (p *Pipeline) severeWeather(ctx context.Context, c *call) string {
	state := strings.ToUpper(c.args.String("state", ""))
	severities := mapStrings(c.args.Strings("severity", []string{"extreme", "severe"}), strings.ToLower)

	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.SevereState, state != "", "State filtering requires WEMS Premium"),
		c.guard.OneOf(tier.SevereSeverity, severities, "Requested severity levels require WEMS Premium"),
	); blocked {
		return msg
	}

	q := feeds.Query{
		"area":      state,
		"severity":  strings.Join(mapStrings(severities, titleCase), ","),
		"event":     c.args.String("event_type", ""),
		"urgency":   titleCase(c.args.String("urgency", "")),
		"certainty": titleCase(c.args.String("certainty", "")),
	}
	events, err := p.fetchOne(ctx, source{feeds.NWSAlerts, q, domain.SevereWeather, "alert"})
	if err != nil {
		return p.fetchFailed(c, "severe weather", err)
	}

	window := c.guard.Policy().Window(tier.SevereLookback)
	page := p.merge([][]domain.Event{events}, c.pageSize(tier.SevereMaxResults), window, func(e domain.Event) bool {
		return slices.Contains(severities, e.Payload.String("severity"))
	})
	p.surface(ctx, c, SevereWeather, page)

	var filters []string
	if state != "" {
		filters = append(filters, "📍 State: "+state)
	}
	filters = append(filters, "⚠️ Severity filter: "+strings.Join(severities, ", "))

	tierNote := ""
	if !c.premium() {
		tierNote = "Free tier: Last 24h, extreme and severe alerts only"
	}
	return render.Render(render.Report{
		Title:   "⛈️ **Severe Weather Alerts**",
		Filters: filters,
		Sections: []render.Section{{
			Heading: "Active Alerts",
			Page:    page,
			Empty:   "🟢 No severe weather alerts",
			Noun:    "alerts",
		}},
		Footer: []string{"🔍 Data source: National Weather Service"},
		Upsell: c.upsell(tier.SevereMaxResults),
	}, c.decisions, tierNote)
}

var floodWindows = map[string]time.Duration{
	"day":  24 * time.Hour,
	"week": 7 * 24 * time.Hour,
}

func (p *Pipeline) floods(ctx context.Context, c *call) string {
	state := strings.ToUpper(c.args.String("state", ""))
	gauges := c.args.Bool("include_river_gauges")
	timeRange := strings.ToLower(c.args.String("time_range", "day"))

	ds := []entitlement.Decision{
		c.guard.Feature(tier.FloodState, state != "", "State filtering requires WEMS Premium"),
		c.guard.Feature(tier.FloodRiverGauges, gauges, "River gauge data requires WEMS Premium"),
		c.guard.OneOf(tier.FloodTimeRange, []string{timeRange}, "Weekly flood history requires WEMS Premium"),
	}
	var stages []string
	if requested := mapStrings(c.args.Strings("flood_stage", nil), strings.ToLower); len(requested) > 0 {
		d := c.guard.Subset(tier.FloodStages, requested, "Requested flood stages require WEMS Premium")
		ds = append(ds, d)
		stages = d.Strings()
	} else {
		stages = c.guard.Narrow(tier.FloodStages, nil)
	}
	if msg, blocked := p.gate(c, ds...); blocked {
		return msg
	}

	srcs := []source{{feeds.NWSAlerts, feeds.Query{"event": floodEvents, "area": state}, domain.Flood, "alert"}}
	if gauges {
		srcs = append(srcs, source{feeds.NWPSGauges, feeds.Query{"state": state}, domain.Flood, "gauge"})
	}
	streams, errs := p.fetchAll(ctx, srcs)
	if err := allFailed(errs); err != nil {
		return p.fetchFailed(c, "flood", err)
	}

	page := p.merge(streams, c.pageSize(tier.FloodMaxResults), floodWindows[timeRange], func(e domain.Event) bool {
		return slices.Contains(stages, e.Class)
	})
	p.surface(ctx, c, Floods, page)

	var filters []string
	if state != "" {
		filters = append(filters, "📍 State: "+state)
	}
	filters = append(filters, "📊 Flood stages: "+strings.Join(stages, ", "))

	tierNote := ""
	if !c.premium() {
		tierNote = "Free tier: Major floods only, last 24h"
	}
	footer := []string{"🔍 Data source: National Weather Service"}
	if gauges {
		footer[0] += ", National Water Prediction Service"
	}
	return render.Render(render.Report{
		Title:   "🌊 **Flood Monitoring Report**",
		Filters: filters,
		Sections: []render.Section{{
			Heading: "Active Flood Warnings",
			Page:    page,
			Empty:   "🟢 No flood warnings or alerts",
			Noun:    "alerts",
		}},
		Footer: footer,
		Upsell: c.upsell(tier.FloodMaxResults),
	}, c.decisions, tierNote)
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
