// Package clock abstracts time for the invite lifecycle. The revocation
// scheduler and the expiry sweeper take a Clock at construction so tests can
// drive their delays with a fake instead of sleeping real time.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// After behaves like time.After for the scheduler's revocation delay.
	After(d time.Duration) <-chan time.Time
	// Tick behaves like time.Ticker.C for the sweeper's recurring pass.
	// The returned stop function releases the underlying ticker.
	Tick(d time.Duration) (<-chan time.Time, func())
}

// System is the wall clock used in production.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

func (System) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (System) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
