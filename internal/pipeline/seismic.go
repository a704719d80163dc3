package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

var errGeocodingDisabled = errors.New("place-name search is not configured")

var quakePeriods = map[string]time.Duration{
	"hour":  time.Hour,
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
}

const defaultRadiusKm = 250.0

func (p *Pipeline) earthquakes(ctx context.Context, c *call) string {
	period := strings.ToLower(c.args.String("time_period", "day"))
	geo := c.args.Has("latitude") || c.args.Has("longitude") || c.args.Has("near") || c.args.Has("radius_km")

	mag := c.guard.Floor(tier.EarthquakeMinMagnitude, c.args.Float("min_magnitude", 4.5), "magnitude")
	if msg, blocked := p.gate(c,
		c.guard.OneOf(tier.EarthquakeTimePeriod, []string{period}, "Weekly and monthly earthquake data require WEMS Premium"),
		c.guard.Feature(tier.EarthquakeGeoSearch, geo, "Location-based earthquake search requires WEMS Premium"),
		mag,
	); blocked {
		return msg
	}
	minMag := mag.Float()
	window := quakePeriods[period]

	now := domain.Now()
	q := feeds.Query{
		"starttime":    now.Add(-window).Format("2006-01-02T15:04:05"),
		"minmagnitude": formatMagnitude(minMag),
	}
	var filters []string
	if geo {
		lat, lon, place, err := p.resolvePoint(ctx, c.args)
		if err != nil {
			return p.fetchFailed(c, "earthquake", err)
		}
		radius := c.args.Float("radius_km", defaultRadiusKm)
		q["latitude"] = strconv.FormatFloat(lat, 'f', 4, 64)
		q["longitude"] = strconv.FormatFloat(lon, 'f', 4, 64)
		q["maxradiuskm"] = strconv.FormatFloat(radius, 'f', -1, 64)
		filters = append(filters, fmt.Sprintf("📍 Within %.0f km of %s", radius, place))
	}

	events, err := p.fetchOne(ctx, source{feeds.USGSEarthquakes, q, domain.Earthquake, "usgs"})
	if err != nil {
		return p.fetchFailed(c, "earthquake", err)
	}

	region := strings.ToLower(c.args.String("region", ""))
	if region != "" {
		filters = append(filters, "🌍 Region filter: "+c.args.String("region", ""))
	}
	page := p.merge([][]domain.Event{events}, c.pageSize(tier.EarthquakeMaxResults), window, func(e domain.Event) bool {
		if m, ok := e.Payload.Float("magnitude"); ok && m < minMag {
			return false
		}
		return region == "" || strings.Contains(strings.ToLower(e.Location), region)
	})
	p.surface(ctx, c, Earthquakes, page)

	if page.Empty() {
		return render.Render(render.Report{
			Title: fmt.Sprintf("🌍 No earthquakes ≥%s magnitude in the past %s", formatMagnitude(minMag), period),
		}, c.decisions, "")
	}
	return render.Render(render.Report{
		Title:    fmt.Sprintf("🌍 Earthquakes ≥%s magnitude (%s): %d found", formatMagnitude(minMag), period, page.Total),
		Filters:  filters,
		Sections: []render.Section{{Page: page, Noun: "earthquakes"}},
		Footer:   []string{"🔍 Data source: USGS Earthquake Hazards Program"},
		Upsell:   c.upsell(tier.EarthquakeMaxResults),
	}, c.decisions, "")
}

// resolvePoint returns the search centre from latitude/longitude or by
// geocoding "near", along with a label for the report.
func (p *Pipeline) resolvePoint(ctx context.Context, args Args) (lat, lon float64, label string, err error) {
	if args.Has("latitude") && args.Has("longitude") {
		lat, lon = args.Float("latitude", 0), args.Float("longitude", 0)
		return lat, lon, fmt.Sprintf("%.4f, %.4f", lat, lon), nil
	}
	near := args.String("near", "")
	if near == "" {
		return 0, 0, "", errors.New("latitude and longitude, or near, are required for a radius search")
	}
	if p.geocoder == nil {
		return 0, 0, "", errGeocodingDisabled
	}
	res, err := p.geocoder.ForwardGeocode(ctx, near)
	if err != nil {
		return 0, 0, "", fmt.Errorf("geocode %q: %w", near, err)
	}
	label = res.FormattedAddress
	if label == "" {
		label = near
	}
	return res.Lat, res.Lon, label, nil
}

func formatMagnitude(m float64) string {
	if m == float64(int64(m)) {
		return strconv.FormatFloat(m, 'f', 1, 64)
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

func (p *Pipeline) volcanoes(ctx context.Context, c *call) string {
	requested := mapStrings(c.args.Strings("alert_levels", []string{"WATCH", "WARNING"}), strings.ToUpper)
	historical := c.args.Bool("include_historical")

	levels := c.guard.Subset(tier.VolcanoAlertLevels, requested, "Requested alert levels require WEMS Premium")
	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.VolcanoHistorical, historical, "Historical volcano data requires WEMS Premium"),
		levels,
	); blocked {
		return msg
	}
	wanted := levels.Strings()

	srcs := []source{{feeds.HANSElevated, nil, domain.Volcano, "elevated"}}
	if historical {
		srcs = append(srcs, source{feeds.HANSNotices, feeds.Query{"days": "30"}, domain.Volcano, "notice"})
	}
	streams, errs := p.fetchAll(ctx, srcs)
	if errs[0] != nil {
		return p.fetchFailed(c, "volcanic", errs[0])
	}

	region := strings.ToLower(c.args.String("region", ""))
	page := p.merge(streams, c.pageSize(tier.VolcanoMaxResults), 0, func(e domain.Event) bool {
		if !containsFold(wanted, e.Class) {
			return false
		}
		if region == "" {
			return true
		}
		return strings.Contains(strings.ToLower(e.Location), region) ||
			strings.Contains(strings.ToLower(e.Payload.String("observatory")), region)
	})
	p.surface(ctx, c, Volcanoes, page)

	footer := []string{"📊 Alert levels monitored: " + strings.Join(wanted, ", ")}
	if region != "" {
		footer = append(footer, "🌍 Region filter: "+c.args.String("region", ""))
	}
	footer = append(footer, "🔍 Data source: USGS Volcano Hazards Program")

	return render.Render(render.Report{
		Title: "🌋 **Volcanic Activity Status**",
		Sections: []render.Section{{
			Heading: "Recent Volcanic Activity",
			Page:    page,
			Empty:   "🟢 No significant volcanic alerts at monitored thresholds",
			Noun:    "volcanoes",
		}},
		Footer: footer,
		Upsell: c.upsell(tier.VolcanoMaxResults),
	}, c.decisions, "")
}

func (p *Pipeline) tsunamis(ctx context.Context, c *call) string {
	requested := mapStrings(c.args.Strings("regions", nil), strings.ToLower)
	var regions []string
	if len(requested) == 0 {
		regions = c.guard.Narrow(tier.TsunamiRegions, nil)
	} else {
		d := c.guard.Subset(tier.TsunamiRegions, requested, "Requested ocean regions require WEMS Premium")
		if msg, blocked := p.gate(c, d); blocked {
			return msg
		}
		regions = d.Strings()
	}

	events, err := p.fetchOne(ctx, source{feeds.TsunamiEvents, nil, domain.Tsunami, "tsunami"})
	if err != nil {
		return p.fetchFailed(c, "tsunami", err)
	}

	window := c.guard.Policy().Window(tier.TsunamiLookback)
	page := p.merge([][]domain.Event{events}, c.pageSize(tier.TsunamiMaxResults), window, func(e domain.Event) bool {
		region := e.Payload.String("region")
		if region == "" {
			return true
		}
		for _, r := range regions {
			if strings.Contains(region, r) {
				return true
			}
		}
		return false
	})
	p.surface(ctx, c, Tsunamis, page)

	return render.Render(render.Report{
		Title: "🌊 **Tsunami Alert Status**",
		Sections: []render.Section{{
			Heading: "Active Tsunami Warnings/Advisories",
			Page:    page,
			Empty:   "🟢 No active tsunami warnings or advisories",
			Noun:    "alerts",
		}},
		Footer: []string{
			"📊 Regions monitored: " + strings.Join(regions, ", "),
			"🔍 Data source: NOAA Tsunami Warning Centers",
		},
		Upsell: c.upsell(tier.TsunamiMaxResults),
	}, c.decisions, "")
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
