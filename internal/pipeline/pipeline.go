package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/wems/internal/adapter/feeds"
	"github.com/couchcryptid/wems/internal/aggregate"
	"github.com/couchcryptid/wems/internal/alert"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/entitlement"
	"github.com/couchcryptid/wems/internal/observability"
	"github.com/couchcryptid/wems/internal/render"
	"github.com/couchcryptid/wems/internal/tier"
)

// ErrUnknownHazard is returned by Run for hazard names with no check.
var ErrUnknownHazard = errors.New("unknown hazard")

// Dispatcher receives the events of every rendered page.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []domain.Event) int
}

// Options tunes feed access.
type Options struct {
	FetchTimeout time.Duration
	Concurrency  int
}

// Pipeline runs hazard checks: entitlement, fetch, normalize, rank, alert
// and render.
type Pipeline struct {
	fetcher    feeds.Fetcher
	dispatcher Dispatcher
	rules      *alert.Store
	geocoder   domain.Geocoder
	logger     *slog.Logger
	metrics    *observability.Metrics
	opts       Options
	ready      atomic.Bool
}

// New creates a Pipeline. Pass a nil geocoder to disable place-name lookups.
func New(fetcher feeds.Fetcher, dispatcher Dispatcher, rules *alert.Store, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Pipeline{
		fetcher:    fetcher,
		dispatcher: dispatcher,
		rules:      rules,
		geocoder:   geocoder,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
	}
}

// CheckReadiness returns nil once a check has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no hazard check has completed yet")
	}
	return nil
}

// MarkReady flags the service ready without waiting for a first check.
func (p *Pipeline) MarkReady() { p.ready.Store(true) }

// Rules exposes the alert rule store.
func (p *Pipeline) Rules() *alert.Store { return p.rules }

// Run executes one check for the given tier and returns its report.
// Blocks, feed failures and recovered panics are all reported as text;
// only an unknown hazard is an error.
func (p *Pipeline) Run(ctx context.Context, hazard Hazard, tierName string, args Args) (text string, err error) {
	chk, ok := checks[hazard]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownHazard, hazard)
	}

	c := &call{
		guard:   entitlement.New(tier.LimitsFor(tierName)),
		args:    args,
		outcome: outcomeOK,
	}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("check panicked", "hazard", hazard, "panic", r, "stack", string(debug.Stack()))
			text = render.Unexpected(chk.subject, r)
			c.outcome = outcomeUnexpected
		}
		p.metrics.Checks.WithLabelValues(string(hazard), c.outcome).Inc()
		p.metrics.CheckDuration.WithLabelValues(string(hazard)).Observe(time.Since(start).Seconds())
		p.ready.Store(true)
		p.logger.Debug("check complete", "hazard", hazard, "tier", c.guard.Policy().Name(), "outcome", c.outcome)
	}()

	return chk.run(p, ctx, c), nil
}

const (
	outcomeOK         = "ok"
	outcomeEmpty      = "empty"
	outcomeBlocked    = "blocked"
	outcomeFetchError = "fetch_error"
	outcomeInvalid    = "invalid"
	outcomeUnexpected = "unexpected"
)

// call carries the state of one check invocation.
type call struct {
	guard     *entitlement.Guard
	args      Args
	decisions entitlement.Decisions
	outcome   string
}

func (c *call) premium() bool { return c.guard.Policy().IsPremium() }

// pageSize returns the result cap for dim, at least one row.
func (c *call) pageSize(dim tier.Dimension) int {
	return max(c.guard.Policy().Cap(dim), 1)
}

// upsell is the overflow hint for free-tier pages.
func (c *call) upsell(dim tier.Dimension) string {
	if c.premium() {
		return ""
	}
	return render.MoreResults(tier.LimitsFor(string(tier.Premium)).Cap(dim))
}

// gate records decisions in order and returns the block text of the first
// blocked one.
func (p *Pipeline) gate(c *call, ds ...entitlement.Decision) (string, bool) {
	for _, d := range ds {
		p.metrics.Decisions.WithLabelValues(d.Kind.String()).Inc()
	}
	c.decisions = append(c.decisions, ds...)
	if d, blocked := c.decisions.FirstBlocked(); blocked {
		c.outcome = outcomeBlocked
		return render.Blocked(d), true
	}
	return "", false
}

// fetchFailed renders a single-feed failure.
func (p *Pipeline) fetchFailed(c *call, subject string, err error) string {
	c.outcome = outcomeFetchError
	return render.FetchFailure(subject, err)
}

// source is one feed contributing to a check.
type source struct {
	feed     feeds.Feed
	query    feeds.Query
	category domain.Category
	kind     string
}

// fetch performs one bounded feed request.
func (p *Pipeline) fetch(ctx context.Context, feed feeds.Feed, q feeds.Query) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.FetchTimeout)
	defer cancel()
	return p.fetcher.Fetch(ctx, feed, q)
}

// fetchOne fetches and normalizes a single feed.
func (p *Pipeline) fetchOne(ctx context.Context, src source) ([]domain.Event, error) {
	recs, err := p.fetch(ctx, src.feed, src.query)
	if err != nil {
		return nil, err
	}
	return domain.Normalize(src.category, src.kind, recs), nil
}

// fetchAll fetches every source concurrently. A failed source is logged and
// contributes an empty stream; errs[i] reports the failure of srcs[i].
func (p *Pipeline) fetchAll(ctx context.Context, srcs []source) (streams [][]domain.Event, errs []error) {
	streams = make([][]domain.Event, len(srcs))
	errs = make([]error, len(srcs))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i, src := range srcs {
		g.Go(func() error {
			streams[i], errs[i] = p.fetchOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err != nil {
			p.logger.Warn("feed failed, continuing without it", "feed", srcs[i].feed, "error", err)
		}
	}
	return streams, errs
}

// allFailed returns the first error when every fetch failed, else nil.
func allFailed(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	for _, err := range errs {
		if err == nil {
			return nil
		}
	}
	return errs[0]
}

// merge ranks streams with the recency window and page size of the tier.
func (p *Pipeline) merge(streams [][]domain.Event, limit int, lookback time.Duration, filter func(domain.Event) bool) aggregate.Page {
	return aggregate.Merge(streams, aggregate.Options{
		Limit:    limit,
		Lookback: lookback,
		Now:      domain.Now(),
		Filter:   filter,
	})
}

// surface hands every page's events to the dispatcher and records the
// outcome.
func (p *Pipeline) surface(ctx context.Context, c *call, hazard Hazard, pages ...aggregate.Page) {
	total := 0
	for _, page := range pages {
		if len(page.Events) == 0 {
			continue
		}
		total += len(page.Events)
		if p.dispatcher != nil {
			p.dispatcher.Dispatch(ctx, page.Events)
		}
	}
	p.metrics.Surfaced.WithLabelValues(string(hazard)).Add(float64(total))
	if total == 0 {
		c.outcome = outcomeEmpty
	}
}
