package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

const (
	defaultUserAgent = "wems/1.0 (hazard monitoring)"
	maxBodyBytes     = 16 << 20
	errorBodyBytes   = 512
)

// Client fetches feeds over one shared http.Client.
type Client struct {
	httpClient *http.Client
	endpoints  Endpoints
	airnowKey  string
	userAgent  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoints overrides the upstream base URLs.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// WithAirNowKey sets the AirNow API key used for US air-quality lookups.
func WithAirNowKey(key string) Option {
	return func(c *Client) { c.airnowKey = key }
}

// WithUserAgent sets the User-Agent header. api.weather.gov rejects requests
// without one.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a feed client. httpClient is shared by every feed and
// carries the connection pool; its lifetime belongs to the caller.
func NewClient(httpClient *http.Client, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		endpoints:  DefaultEndpoints(),
		userAgent:  defaultUserAgent,
		metrics:    metrics,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs one GET against feed and parses the response.
func (c *Client) Fetch(ctx context.Context, feed Feed, q Query) ([]domain.Record, error) {
	src, ok := sources[feed]
	if !ok {
		return nil, &FetchError{Feed: feed, Err: ErrUnknownFeed}
	}
	target, err := src.endpoint(c, q)
	if err != nil {
		return nil, &FetchError{Feed: feed, Err: err}
	}

	start := time.Now()
	body, status, err := c.get(ctx, target, src.accept)
	c.metrics.FeedFetchDuration.WithLabelValues(string(feed)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(string(feed), "error").Inc()
		return nil, &FetchError{Feed: feed, StatusCode: status, Err: err}
	}

	recs, err := src.parse(body, q)
	if err != nil {
		c.metrics.FeedFetches.WithLabelValues(string(feed), "error").Inc()
		return nil, &FetchError{Feed: feed, Err: fmt.Errorf("parse response: %w", err)}
	}
	c.metrics.FeedFetches.WithLabelValues(string(feed), "success").Inc()
	c.logger.Debug("feed fetched", "feed", feed, "records", len(recs), "duration", time.Since(start))
	return recs, nil
}

// get returns the body of a 2xx response. For other statuses the returned
// code is set and the error carries the start of the body.
func (c *Client) get(ctx context.Context, target, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyBytes))
		msg := strings.TrimSpace(string(snippet))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, resp.StatusCode, errors.New(msg)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
