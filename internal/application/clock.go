package application

import "time"

// Clock abstraction so timestamps can be controlled in tests
type Clock interface {
	Now() time.Time
}

// SystemClock is the default clock, backed by time.Now
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
