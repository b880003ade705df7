package engine

import (
	"time"

	"github.com/tartampluch/go-medreminder/internal/config"
)

// Clock abstracts time.Now() so the scheduler and the alarm ledger can be
// driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the local wall clock.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// MinuteKey renders t as the HH:mm key the scheduler de-duplicates on.
func MinuteKey(t time.Time) string {
	return t.Format(config.ClockFormat)
}
