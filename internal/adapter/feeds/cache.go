package feeds

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/wems/internal/cache"
	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

// CachedFetcher wraps a Fetcher with a short-lived LRU of parsed responses.
type CachedFetcher struct {
	inner   Fetcher
	cache   *cache.LRU[[]domain.Record]
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator. A non-positive ttl disables
// caching: hazard feeds change too often to hold responses indefinitely.
func NewCachedFetcher(inner Fetcher, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	if ttl <= 0 {
		maxEntries = 0
	}
	return &CachedFetcher{
		inner:   inner,
		cache:   cache.New[[]domain.Record](maxEntries, ttl, clock),
		metrics: metrics,
	}
}

// Fetch serves identical queries from cache. Cached slices are shared
// between callers and must not be modified.
func (c *CachedFetcher) Fetch(ctx context.Context, feed Feed, q Query) ([]domain.Record, error) {
	key := string(feed) + "?" + q.encode()
	if recs, ok := c.cache.Get(key); ok {
		c.metrics.FeedCache.WithLabelValues("hit").Inc()
		return recs, nil
	}
	c.metrics.FeedCache.WithLabelValues("miss").Inc()

	recs, err := c.inner.Fetch(ctx, feed, q)
	if err != nil {
		return nil, err
	}
	c.cache.Put(key, recs)
	return recs, nil
}
