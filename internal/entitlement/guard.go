// Package entitlement turns a caller's requested parameters into per-dimension
// decisions against the active tier policy, before any feed is contacted.
package entitlement

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/wems/internal/tier"
)

// Upsell is appended to every block message.
const Upsell = "Upgrade to WEMS Premium to unlock this feature."

// Kind is the outcome of one gated dimension.
type Kind int

const (
	Allowed Kind = iota
	Downgraded
	Blocked
)

func (k Kind) String() string {
	switch k {
	case Allowed:
		return "allowed"
	case Downgraded:
		return "downgraded"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Decision is the guard's verdict for one dimension. Value holds the
// effective value (float64, []string, or bool depending on the gate);
// Original holds what the caller asked for.
type Decision struct {
	Dimension tier.Dimension
	Kind      Kind
	Value     any
	Original  any
	Reason    string
	Upsell    string
	Note      string
}

// IsBlocked reports whether the decision short-circuits the check.
func (d Decision) IsBlocked() bool { return d.Kind == Blocked }

// Float returns the effective numeric value.
func (d Decision) Float() float64 {
	v, _ := d.Value.(float64)
	return v
}

// Strings returns the effective list value.
func (d Decision) Strings() []string {
	v, _ := d.Value.([]string)
	return v
}

// Decisions collects the verdicts of one call.
type Decisions []Decision

// FirstBlocked returns the first blocking decision, in evaluation order.
func (ds Decisions) FirstBlocked() (Decision, bool) {
	for _, d := range ds {
		if d.IsBlocked() {
			return d, true
		}
	}
	return Decision{}, false
}

// Notes returns the informational notes of downgraded decisions.
func (ds Decisions) Notes() []string {
	var notes []string
	for _, d := range ds {
		if d.Kind == Downgraded && d.Note != "" {
			notes = append(notes, d.Note)
		}
	}
	return notes
}

// Guard evaluates requests against one tier policy.
type Guard struct {
	policy tier.Policy
}

// New creates a Guard for the given policy.
func New(policy tier.Policy) *Guard {
	return &Guard{policy: policy}
}

// Policy returns the policy the guard evaluates against.
func (g *Guard) Policy() tier.Policy { return g.policy }

// Floor clamps requested up to the tier's floor. label names the parameter
// in the downgrade note.
func (g *Guard) Floor(dim tier.Dimension, requested float64, label string) Decision {
	lowest := g.policy.Floor(dim)
	if requested >= lowest {
		return Decision{Dimension: dim, Kind: Allowed, Value: requested, Original: requested}
	}
	return Decision{
		Dimension: dim,
		Kind:      Downgraded,
		Value:     lowest,
		Original:  requested,
		Note: fmt.Sprintf("Free tier minimum %s is %s (requested %s). Upgrade to WEMS Premium for lower thresholds.",
			label, formatNumber(lowest), formatNumber(requested)),
	}
}

// Ceiling clamps requested down to the tier's ceiling.
func (g *Guard) Ceiling(dim tier.Dimension, requested float64, label string) Decision {
	highest := g.policy.Ceiling(dim)
	if requested <= highest {
		return Decision{Dimension: dim, Kind: Allowed, Value: requested, Original: requested}
	}
	note := fmt.Sprintf("Free tier limits %s to %s (requested %s). Upgrade to WEMS Premium for extended history.",
		label, formatWhole(highest), formatWhole(requested))
	if g.policy.IsPremium() {
		note = fmt.Sprintf("Premium tier limits %s to %s (requested %s).",
			label, formatWhole(highest), formatWhole(requested))
	}
	return Decision{
		Dimension: dim,
		Kind:      Downgraded,
		Value:     highest,
		Original:  requested,
		Note:      note,
	}
}

// OneOf is the all-or-nothing enum gate: unless every requested value is in
// the allowed set, the call is blocked.
func (g *Guard) OneOf(dim tier.Dimension, requested []string, reason string) Decision {
	for _, v := range requested {
		if !g.policy.AllowsValue(dim, v) {
			return g.block(dim, requested, reason)
		}
	}
	return Decision{Dimension: dim, Kind: Allowed, Value: requested, Original: requested}
}

// Subset is the partial-filter enum gate: disallowed values are dropped and
// the call proceeds with the rest. Only an empty remainder blocks.
func (g *Guard) Subset(dim tier.Dimension, requested []string, reason string) Decision {
	kept := make([]string, 0, len(requested))
	var dropped []string
	for _, v := range requested {
		if g.policy.AllowsValue(dim, v) {
			kept = append(kept, v)
		} else {
			dropped = append(dropped, v)
		}
	}
	switch {
	case len(kept) == 0 && len(requested) > 0:
		return g.block(dim, requested, reason)
	case len(dropped) == 0:
		return Decision{Dimension: dim, Kind: Allowed, Value: kept, Original: requested}
	}
	return Decision{
		Dimension: dim,
		Kind:      Downgraded,
		Value:     kept,
		Original:  requested,
		Note: fmt.Sprintf("Free tier excludes %s; showing %s. Upgrade to WEMS Premium for all options.",
			strings.Join(dropped, ", "), strings.Join(kept, ", ")),
	}
}

// Feature gates a boolean flag: requesting a feature the tier lacks blocks.
func (g *Guard) Feature(dim tier.Dimension, requested bool, reason string) Decision {
	if requested && !g.policy.Allows(dim) {
		return g.block(dim, requested, reason)
	}
	return Decision{Dimension: dim, Kind: Allowed, Value: requested, Original: requested}
}

func (g *Guard) block(dim tier.Dimension, requested any, reason string) Decision {
	return Decision{
		Dimension: dim,
		Kind:      Blocked,
		Original:  requested,
		Reason:    reason,
		Upsell:    Upsell,
	}
}

// Narrow returns the members of requested allowed by dim, preserving order,
// or the tier's allowed set when requested is empty.
func (g *Guard) Narrow(dim tier.Dimension, requested []string) []string {
	if len(requested) == 0 {
		return g.policy.Allowed(dim)
	}
	return slices.DeleteFunc(slices.Clone(requested), func(v string) bool {
		return !g.policy.AllowsValue(dim, v)
	})
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// formatWhole drops the decimal for whole numbers, so 24 hours reads "24".
func formatWhole(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
