package alert

import (
	"errors"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/wems/internal/domain"
)

// ErrUnknownCategory is returned when updating a category that was never configured.
var ErrUnknownCategory = errors.New("unknown alert category")

type table map[domain.Category]Rule

// Store is the process-wide rule table. Readers load an immutable snapshot;
// writers build a new snapshot under mu and swap it in, so a read never
// observes a half-merged rule.
type Store struct {
	mu   sync.Mutex
	snap atomic.Pointer[table]
}

// NewStore creates a Store seeded with rules.
func NewStore(rules map[domain.Category]Rule) *Store {
	s := &Store{}
	t := make(table, len(rules))
	for c, r := range rules {
		t[c] = r.clone()
	}
	s.snap.Store(&t)
	return s
}

// Rule returns a copy of the rule for c.
func (s *Store) Rule(c domain.Category) (Rule, bool) {
	r, ok := (*s.snap.Load())[c]
	if !ok {
		return nil, false
	}
	return r.clone(), true
}

// Snapshot returns a copy of the whole table.
func (s *Store) Snapshot() map[domain.Category]Rule {
	cur := *s.snap.Load()
	out := make(map[domain.Category]Rule, len(cur))
	for c, r := range cur {
		out[c] = r.clone()
	}
	return out
}

// Update merges partial into the rule for c, last writer wins, and returns
// the merged rule. Keys are not validated.
func (s *Store) Update(c domain.Category, partial map[string]any) (Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := *s.snap.Load()
	existing, ok := cur[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}

	merged := existing.clone()
	if merged == nil {
		merged = Rule{}
	}
	maps.Copy(merged, partial)

	next := maps.Clone(cur)
	next[c] = merged
	s.snap.Store(&next)

	return merged.clone(), nil
}
