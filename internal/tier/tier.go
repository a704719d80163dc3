// Package tier holds the static entitlement table: for each tier, the
// numeric floors and ceilings, pagination caps, lookback windows, allowed
// enum sets, and feature flags of every gated dimension.
package tier

import (
	"math"
	"slices"
	"strings"
	"time"
)

// Name identifies an entitlement level.
type Name string

const (
	Free    Name = "free"
	Premium Name = "premium"
)

// Kind distinguishes the shape of a limit value.
type Kind int

const (
	KindFloor Kind = iota
	KindCeiling
	KindCap
	KindWindow
	KindEnum
	KindFlag
)

// anyValue in an enum set admits every requested value.
const anyValue = "*"

// Limit is one entry of a tier's policy. Only the field matching Kind is meaningful.
type Limit struct {
	Kind   Kind
	Number float64
	Cap    int
	Window time.Duration
	Enum   []string
	Flag   bool
}

// Policy is the immutable set of limits for one tier.
type Policy struct {
	name   Name
	limits map[Dimension]Limit
}

// LimitsFor returns the policy for a tier name. Unknown names, including the
// empty string, resolve to the free policy.
func LimitsFor(name string) Policy {
	n := Name(strings.ToLower(strings.TrimSpace(name)))
	limits, ok := table[n]
	if !ok {
		return Policy{name: Free, limits: table[Free]}
	}
	return Policy{name: n, limits: limits}
}

// Name returns the tier this policy was resolved to.
func (p Policy) Name() Name { return p.name }

// IsPremium reports whether the policy is the premium tier.
func (p Policy) IsPremium() bool { return p.name == Premium }

// lookup returns the tier's entry for d. A dimension missing from a tier
// falls back to the free entry, and a dimension missing from free falls back
// to the most restrictive zero value for its kind.
func (p Policy) lookup(d Dimension) (Limit, bool) {
	if l, ok := p.limits[d]; ok {
		return l, true
	}
	if l, ok := table[Free][d]; ok {
		return l, true
	}
	return Limit{}, false
}

// Floor returns the minimum allowed value for d. Missing entries return +Inf.
func (p Policy) Floor(d Dimension) float64 {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindFloor {
		return math.Inf(1)
	}
	return l.Number
}

// Ceiling returns the maximum allowed value for d. Missing entries return 0.
func (p Policy) Ceiling(d Dimension) float64 {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindCeiling {
		return 0
	}
	return l.Number
}

// Cap returns the pagination cap for d. Missing entries return 0.
func (p Policy) Cap(d Dimension) int {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindCap {
		return 0
	}
	return l.Cap
}

// Window returns the recency lookback for d. Missing entries return 0, which
// admits nothing with a timestamp.
func (p Policy) Window(d Dimension) time.Duration {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindWindow {
		return 0
	}
	return l.Window
}

// Allows reports whether the feature flag d is enabled for the tier.
func (p Policy) Allows(d Dimension) bool {
	l, ok := p.lookup(d)
	return ok && l.Kind == KindFlag && l.Flag
}

// Allowed returns the allowed enum values for d, or nil when the set is
// unrestricted or missing. Use AllowsValue for membership.
func (p Policy) Allowed(d Dimension) []string {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindEnum || slices.Contains(l.Enum, anyValue) {
		return nil
	}
	return slices.Clone(l.Enum)
}

// AllowsValue reports whether v is in the allowed set for d. Comparison is
// case-insensitive.
func (p Policy) AllowsValue(d Dimension, v string) bool {
	l, ok := p.lookup(d)
	if !ok || l.Kind != KindEnum {
		return false
	}
	for _, a := range l.Enum {
		if a == anyValue || strings.EqualFold(a, v) {
			return true
		}
	}
	return false
}
