// Package aggregate merges event streams from one or more feeds into a single
// ranked, paginated page.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"github.com/couchcryptid/wems/internal/domain"
)

// Options controls one merge.
type Options struct {
	// Limit is the page size. Zero or negative shows nothing.
	Limit int
	// Lookback drops timestamped events older than Now-Lookback. Zero or
	// negative disables the cutoff.
	Lookback time.Duration
	Now      time.Time
	// Filter, when set, keeps only events it returns true for.
	Filter func(domain.Event) bool
}

// Page is the ranked result of a merge.
type Page struct {
	Events    []domain.Event
	Remainder int
	Total     int
}

// Empty reports whether nothing survived filtering.
func (p Page) Empty() bool { return p.Total == 0 }

// Merge concatenates streams, drops duplicates and stale events, ranks the
// rest most severe first (most recent first within a rank) and slices to
// the limit.
func Merge(streams [][]domain.Event, opts Options) Page {
	var cutoff time.Time
	if opts.Lookback > 0 {
		cutoff = opts.Now.Add(-opts.Lookback)
	}

	seen := make(map[string]struct{})
	var all []domain.Event
	for _, stream := range streams {
		for _, e := range stream {
			if _, dup := seen[e.ID]; dup && e.ID != "" {
				continue
			}
			seen[e.ID] = struct{}{}

			if opts.Filter != nil && !opts.Filter(e) {
				continue
			}
			if !cutoff.IsZero() && e.HasTime() && e.OccurredAt.Before(cutoff) {
				continue
			}
			all = append(all, e)
		}
	}

	slices.SortStableFunc(all, compare)

	total := len(all)
	limit := max(opts.Limit, 0)
	if total <= limit {
		return Page{Events: all, Total: total}
	}
	return Page{Events: all[:limit:limit], Remainder: total - limit, Total: total}
}

// compare orders by rank ascending, then time descending with untimed events
// after timed ones, then ID for a total order.
func compare(a, b domain.Event) int {
	if c := cmp.Compare(a.SeverityRank, b.SeverityRank); c != 0 {
		return c
	}
	switch {
	case a.HasTime() && !b.HasTime():
		return -1
	case !a.HasTime() && b.HasTime():
		return 1
	case a.HasTime() && b.HasTime():
		if c := b.OccurredAt.Compare(a.OccurredAt); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.ID, b.ID)
}
