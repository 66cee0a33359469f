package main

import "time"

// Clock abstracts the time source so rate-limit windows and session
// timestamps can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production time source.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// MockClock is a manually advanced Clock for tests. Advancing it is how the
// limiter tests elapse a fixed window without sleeping.
type MockClock struct {
	now time.Time
}

func (mc *MockClock) Now() time.Time {
	return mc.now
}

// Advance moves the clock forward by d.
func (mc *MockClock) Advance(d time.Duration) {
	mc.now = mc.now.Add(d)
}
