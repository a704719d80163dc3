package feeds

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/wems/internal/domain"
	"github.com/couchcryptid/wems/internal/observability"
)

type countingFetcher struct {
	calls int
	recs  []domain.Record
	err   error
}

func (f *countingFetcher) Fetch(context.Context, Feed, Query) ([]domain.Record, error) {
	f.calls++
	return f.recs, f.err
}

func TestCachedFetcher_HitWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	inner := &countingFetcher{recs: []domain.Record{{"id": "a"}}}
	cached := NewCachedFetcher(inner, 10, time.Minute, clock, observability.NewMetricsForTesting())
	ctx := context.Background()

	r1, err := cached.Fetch(ctx, NWSAlerts, Query{"area": "TX", "severity": "Extreme"})
	require.NoError(t, err)
	r2, err := cached.Fetch(ctx, NWSAlerts, Query{"severity": "Extreme", "area": "TX"})
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "equal queries share a cache key regardless of map order")

	clock.Advance(2 * time.Minute)
	_, err = cached.Fetch(ctx, NWSAlerts, Query{"area": "TX", "severity": "Extreme"})
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entries are refetched")
}

func TestCachedFetcher_DistinctKeys(t *testing.T) {
	inner := &countingFetcher{}
	cached := NewCachedFetcher(inner, 10, time.Minute, clockwork.NewFakeClock(), observability.NewMetricsForTesting())
	ctx := context.Background()

	_, _ = cached.Fetch(ctx, NWSAlerts, Query{"area": "TX"})
	_, _ = cached.Fetch(ctx, NWSAlerts, Query{"area": "OK"})
	_, _ = cached.Fetch(ctx, NHCStorms, Query{"area": "TX"})

	assert.Equal(t, 3, inner.calls)
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("boom")}
	cached := NewCachedFetcher(inner, 10, time.Minute, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, err := cached.Fetch(context.Background(), SWPCAlerts, nil)
	require.Error(t, err)
	_, err = cached.Fetch(context.Background(), SWPCAlerts, nil)
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_ZeroTTLDisables(t *testing.T) {
	inner := &countingFetcher{}
	cached := NewCachedFetcher(inner, 10, 0, clockwork.NewFakeClock(), observability.NewMetricsForTesting())

	_, _ = cached.Fetch(context.Background(), SWPCAlerts, nil)
	_, _ = cached.Fetch(context.Background(), SWPCAlerts, nil)

	assert.Equal(t, 2, inner.calls)
}
