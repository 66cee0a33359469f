package main

import (
	"testing"
	"time"
)

// TestRateLimiterFixedWindow verifies that within one window a key is allowed
// at most maxRequests times and the next call is denied.
func TestRateLimiterFixedWindow(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(1, 10*time.Second, mockClock)

	key := rateLimitKey(12345)

	if !limiter.IsAllowed(key) {
		t.Errorf("Expected first request to be allowed")
	}

	mockClock.Advance(time.Second)
	if limiter.IsAllowed(key) {
		t.Errorf("Expected second request within the window to be denied")
	}

	// Still inside the window.
	mockClock.Advance(8 * time.Second)
	if limiter.IsAllowed(key) {
		t.Errorf("Expected request at 9s to be denied")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(1, 10*time.Second, mockClock)

	key := rateLimitKey(12345)

	if !limiter.IsAllowed(key) {
		t.Fatalf("Expected first request to be allowed")
	}

	// A fully elapsed window resets the counter.
	mockClock.Advance(10*time.Second + time.Millisecond)
	if !limiter.IsAllowed(key) {
		t.Errorf("Expected request after the window elapsed to be allowed")
	}

	// The reset opened a fresh window.
	if limiter.IsAllowed(key) {
		t.Errorf("Expected request inside the fresh window to be denied")
	}
}

func TestRateLimiterMultipleRequestsPerWindow(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(3, time.Minute, mockClock)

	key := rateLimitKey(1)

	for i := 0; i < 3; i++ {
		if !limiter.IsAllowed(key) {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}
	if limiter.IsAllowed(key) {
		t.Errorf("Expected 4th request within the window to be denied")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(1, 10*time.Second, mockClock)

	if !limiter.IsAllowed(rateLimitKey(1)) {
		t.Fatalf("Expected first request for user 1 to be allowed")
	}
	if !limiter.IsAllowed(rateLimitKey(2)) {
		t.Errorf("Expected first request for user 2 to be allowed despite user 1's window")
	}
}

// TestRateLimiterRemainingTime verifies the remaining time is monotonically
// non-increasing within a window and reaches zero when the window elapses.
func TestRateLimiterRemainingTime(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(1, 10*time.Second, mockClock)

	key := rateLimitKey(12345)

	if got := limiter.RemainingTime(key); got != 0 {
		t.Errorf("Expected zero remaining time for unknown key, got %v", got)
	}

	limiter.IsAllowed(key)
	if got := limiter.RemainingTime(key); got != 10*time.Second {
		t.Errorf("Expected 10s remaining right after the first request, got %v", got)
	}

	previous := limiter.RemainingTime(key)
	for i := 0; i < 10; i++ {
		mockClock.Advance(time.Second)
		current := limiter.RemainingTime(key)
		if current > previous {
			t.Errorf("Expected remaining time to be non-increasing, went from %v to %v", previous, current)
		}
		previous = current
	}

	if previous != 0 {
		t.Errorf("Expected zero remaining time once the window elapsed, got %v", previous)
	}
}

// TestRateLimiterCleanup verifies expired entries are dropped and entries
// still within their window survive.
func TestRateLimiterCleanup(t *testing.T) {
	mockClock := &MockClock{
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	limiter := NewRateLimiter(1, 10*time.Second, mockClock)

	oldKey := rateLimitKey(1)
	freshKey := rateLimitKey(2)

	limiter.IsAllowed(oldKey)
	mockClock.Advance(6 * time.Second)
	limiter.IsAllowed(freshKey)
	mockClock.Advance(5 * time.Second) // oldKey: 11s elapsed, freshKey: 5s

	limiter.Cleanup()

	limiter.mu.Lock()
	_, oldExists := limiter.entries[oldKey]
	_, freshExists := limiter.entries[freshKey]
	limiter.mu.Unlock()

	if oldExists {
		t.Errorf("Expected expired entry to be removed by Cleanup")
	}
	if !freshExists {
		t.Errorf("Expected in-window entry to survive Cleanup")
	}

	// The retained entry still enforces its window.
	if limiter.IsAllowed(freshKey) {
		t.Errorf("Expected retained entry to keep denying within its window")
	}
}
