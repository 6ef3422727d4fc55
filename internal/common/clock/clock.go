// Package clock abstracts wall-clock time so cooldowns and voting deadlines
// can be driven by a fake in tests.
package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/KirkDiggler/crowdplay/internal/common/clock Clock

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// System implements Clock using the system clock
type System struct{}

// New returns the system clock
func New() *System {
	return &System{}
}

// Now returns the current time
func (c *System) Now() time.Time {
	return time.Now()
}

// Elapsed reports how long ago since was according to c. A zero since is
// treated as infinitely long ago.
func Elapsed(c Clock, since time.Time) time.Duration {
	if since.IsZero() {
		return time.Duration(1<<63 - 1)
	}
	return c.Now().Sub(since)
}
