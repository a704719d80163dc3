package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock drives every "now" in hazard checks: lookback windows, advisory
// expiry and the drought report's date range.
var clock clockwork.Clock = clockwork.NewRealClock()

// SetClock replaces the time source. nil restores the real clock. Tests
// freeze it with clockwork.NewFakeClockAt.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Now returns the current time in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
