// Package biztime centralises wall-clock access. All stored times are UTC.
package biztime

import (
	"sync/atomic"
	"time"
)

var clock atomic.Value

func init() {
	clock.Store(func() time.Time { return time.Now() })
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return clock.Load().(func() time.Time)().UTC()
}

// SetClock replaces the time source and returns a func restoring the previous one. Tests only.
func SetClock(now func() time.Time) (restore func()) {
	prev := clock.Load()
	clock.Store(now)
	return func() { clock.Store(prev) }
}
