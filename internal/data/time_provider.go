package data

import "time"

// TimeProvider supplies the current time so repositories can be tested against a fixed clock.
type TimeProvider interface {
	Now() time.Time
}

// ClockFunc adapts a function to TimeProvider.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

var systemClock TimeProvider = ClockFunc(time.Now)
