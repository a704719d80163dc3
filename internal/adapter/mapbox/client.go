package mapbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// MinRelevance is the lowest Mapbox relevance accepted as a match.
const MinRelevance = 0.5

// placeTypes restricts matches to settlements and areas; street addresses
// are never a sensible search centre.
const placeTypes = "place,locality,district,region,postcode"

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	country    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint. Tests use it.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient shares a pooled client instead of the default one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCountry biases lookups to ISO 3166 alpha-2 country codes, comma separated.
func WithCountry(codes string) Option {
	return func(c *Client) { c.country = strings.ToLower(codes) }
}

// NewClient creates a Mapbox geocoding client. timeout bounds each lookup.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		token:      token,
		httpClient: &http.Client{},
		baseURL:    defaultBaseURL,
		timeout:    timeout,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForwardGeocode resolves a place name to its best match. A place with no
// match at or above MinRelevance returns domain.ErrPlaceNotFound.
func (c *Client) ForwardGeocode(ctx context.Context, place string) (domain.GeocodingResult, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return domain.GeocodingResult{}, domain.ErrPlaceNotFound
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := c.lookup(ctx, place)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, domain.ErrPlaceNotFound):
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		c.logger.Debug("no geocoding match", "place", place)
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		c.logger.Warn("forward geocoding failed", "place", place, "error", err)
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
	return result, err
}

func (c *Client) lookup(ctx context.Context, place string) (domain.GeocodingResult, error) {
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"3"},
		"types":        {placeTypes},
		"autocomplete": {"false"},
	}
	if c.country != "" {
		params.Set("country", c.country)
	}
	u := fmt.Sprintf("%s/%s.json?%s", c.baseURL, url.PathEscape(place), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("forward geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}
	f, ok := r.best()
	if !ok {
		return domain.GeocodingResult{}, domain.ErrPlaceNotFound
	}
	return domain.GeocodingResult{
		Lat:              f.Center[1],
		Lon:              f.Center[0],
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}, nil
}

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}

// best returns the most relevant feature with usable coordinates.
func (r response) best() (feature, bool) {
	var top feature
	found := false
	for _, f := range r.Features {
		if len(f.Center) != 2 || f.Relevance < MinRelevance {
			continue
		}
		if !found || f.Relevance > top.Relevance {
			top, found = f, true
		}
	}
	return top, found
}
