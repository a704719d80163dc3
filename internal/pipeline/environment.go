package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/aggregate"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/entitlement"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

func (p *Pipeline) airQuality(ctx context.Context, c *call) string {
	country := strings.ToUpper(c.args.String("country", "US"))
	zip := c.args.String("zip_code", "")
	city := c.args.String("city", "")
	forecast := c.args.Bool("include_forecast")

	ds := []entitlement.Decision{
		c.guard.Feature(tier.AirQualityLocalSearch, zip != "" || city != "", "City/ZIP code filtering requires WEMS Premium"),
		c.guard.Feature(tier.AirQualityForecast, forecast, "AQI forecasts require WEMS Premium"),
		c.guard.OneOf(tier.AirQualityCountry, []string{country}, "Country filtering requires WEMS Premium"),
	}
	var params []string
	if requested := mapStrings(c.args.Strings("parameters", nil), feeds.NormalizeParameter); len(requested) > 0 {
		d := c.guard.Subset(tier.AirQualityParameters, requested, "Requested pollutants require WEMS Premium")
		ds = append(ds, d)
		params = d.Strings()
	} else {
		params = c.guard.Narrow(tier.AirQualityParameters, nil)
	}
	if msg, blocked := p.gate(c, ds...); blocked {
		return msg
	}

	var filters []string
	if st := c.args.String("state", ""); st != "" {
		filters = append(filters, "📍 State: "+strings.ToUpper(st))
	}
	local := feeds.Query{}
	switch {
	case zip != "":
		local["zip_code"] = zip
		filters = append(filters, "📍 ZIP: "+zip)
	case c.args.Has("latitude") && c.args.Has("longitude"):
		lat, lon := c.args.Float("latitude", 0), c.args.Float("longitude", 0)
		local["latitude"] = strconv.FormatFloat(lat, 'f', 4, 64)
		local["longitude"] = strconv.FormatFloat(lon, 'f', 4, 64)
		filters = append(filters, fmt.Sprintf("📍 Coordinates: %.4f, %.4f", lat, lon))
	case city != "" && country == "US" && p.geocoder != nil:
		res, err := p.geocoder.ForwardGeocode(ctx, city)
		if err != nil {
			return p.fetchFailed(c, "air quality", fmt.Errorf("geocode %q: %w", city, err))
		}
		local["latitude"] = strconv.FormatFloat(res.Lat, 'f', 4, 64)
		local["longitude"] = strconv.FormatFloat(res.Lon, 'f', 4, 64)
		filters = append(filters, "📍 City: "+city)
	}
	if distance := c.args.Float("radius_km", 0); distance > 0 && len(local) > 0 {
		local["distance"] = strconv.FormatFloat(distance/1.609, 'f', 0, 64)
	}

	var srcs []source
	dataSource := "EPA AirNow"
	if len(local) > 0 {
		srcs = append(srcs, source{feeds.AirNowCurrent, local, domain.AirQuality, "observation"})
		if forecast {
			fq := feeds.Query{"date": domain.Now().Format("2006-01-02")}
			for k, v := range local {
				fq[k] = v
			}
			srcs = append(srcs, source{feeds.AirNowForecast, fq, domain.AirQuality, "forecast"})
		}
	} else {
		q := feeds.Query{"country": country, "parameters": strings.Join(params, ",")}
		if city != "" {
			q["city"] = city
			filters = append(filters, "📍 City: "+city)
		}
		srcs = append(srcs, source{feeds.OpenAQLatest, q, domain.AirQuality, "measurement"})
		dataSource = "OpenAQ"
		if country == "US" {
			dataSource = "OpenAQ (EPA AirNow reporting stations)"
		}
	}
	filters = append(filters, "🌐 Country: "+country, "🧪 Pollutants: "+strings.Join(params, ", "))
	if forecast {
		filters = append(filters, "📅 Forecast included")
	}

	streams, errs := p.fetchAll(ctx, srcs)
	if err := allFailed(errs); err != nil {
		return p.fetchFailed(c, "air quality", err)
	}

	page := p.merge(streams, c.pageSize(tier.AirQualityMaxResults), 0, func(e domain.Event) bool {
		return slices.Contains(params, e.Payload.String("parameter"))
	})
	p.surface(ctx, c, AirQuality, page)

	tierNote := ""
	if !c.premium() {
		tierNote = "Free tier: US only, PM2.5 and ozone. Premium adds all pollutants, city search and forecasts."
	}

	return render.Render(render.Report{
		Title:   "🌬️ **Air Quality Report**",
		Filters: filters,
		Sections: []render.Section{{
			Heading: "Monitoring Stations",
			Page:    page,
			Empty:   "📭 No air quality data available for the selected area",
			Noun:    "stations",
		}},
		Footer: []string{"🔍 Data source: " + dataSource},
		Upsell: c.upsell(tier.AirQualityMaxResults),
	}, c.decisions, tierNote)
}

// trendWeeks is how far back the drought trend compares.
const trendWeeks = 4

func (p *Pipeline) drought(ctx context.Context, c *call) string {
	if msg, blocked := p.gate(c,
		c.guard.Feature(tier.DroughtAccess, true, "Drought monitoring requires WEMS Premium"),
	); blocked {
		return msg
	}

	arg := c.args.String("state", "")
	st, ok := lookupState(arg)
	if !ok {
		c.outcome = outcomeInvalid
		return fmt.Sprintf("❌ Invalid state: %q. Use a 2-letter abbreviation (e.g. CA) or FIPS code (e.g. 06).", arg)
	}

	now := domain.Now()
	q := feeds.Query{
		"aoi":       st.fips,
		"state":     st.code,
		"startdate": usdmDate(now.AddDate(0, 0, -7*(trendWeeks+1))),
		"enddate":   usdmDate(now),
	}
	weeks, err := p.fetchOne(ctx, source{feeds.USDMStatistics, q, domain.Drought, "usdm"})
	if err != nil {
		return p.fetchFailed(c, "drought", err)
	}
	if len(weeks) == 0 {
		c.outcome = outcomeEmpty
		return fmt.Sprintf("📭 No drought data available for %s", st.code)
	}

	// Weeks arrive newest first.
	current := weeks[0]
	p.surface(ctx, c, Drought, aggregate.Page{Events: weeks[:1], Total: 1})

	var previous *domain.Event
	if len(weeks) > 1 && c.args.BoolOr("include_trend", true) {
		previous = &weeks[min(trendWeeks, len(weeks)-1)]
	}
	return render.Drought(st.code, current, previous)
}

func usdmDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
