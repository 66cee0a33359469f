package main

import (
	"fmt"
	"sync"
	"time"
)

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

// RateLimiter is a fixed-window per-key admission limiter. The counter resets
// when a full window has elapsed since the first request of the window; it does
// not slide. State lives in memory only and is lost on restart.
type RateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*rateLimitEntry
	maxRequests int
	window      time.Duration
	clock       Clock
}

func NewRateLimiter(maxRequests int, window time.Duration, clock Clock) *RateLimiter {
	return &RateLimiter{
		entries:     make(map[string]*rateLimitEntry),
		maxRequests: maxRequests,
		window:      window,
		clock:       clock,
	}
}

// IsAllowed reports whether the key may make a request now, counting it if so.
// The check and the increment happen under one lock, so concurrent handlers
// cannot push the counter past maxRequests.
func (rl *RateLimiter) IsAllowed(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	entry, exists := rl.entries[key]
	if !exists {
		rl.entries[key] = &rateLimitEntry{windowStart: now, count: 1}
		return true
	}

	if now.Sub(entry.windowStart) > rl.window {
		entry.windowStart = now
		entry.count = 1
		return true
	}

	if entry.count >= rl.maxRequests {
		return false
	}

	entry.count++
	return true
}

// RemainingTime returns how long until the key's current window elapses, or
// zero when the key has no entry or its window has already passed.
func (rl *RateLimiter) RemainingTime(key string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.entries[key]
	if !exists {
		return 0
	}

	remaining := rl.window - rl.clock.Now().Sub(entry.windowStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Cleanup drops entries whose window has fully elapsed. It is driven by an
// external ticker and never schedules itself.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for key, entry := range rl.entries {
		if now.Sub(entry.windowStart) > rl.window {
			delete(rl.entries, key)
		}
	}
}

// rateLimitKey derives the admission key for a Telegram user.
func rateLimitKey(userID int64) string {
	return fmt.Sprintf("user_%d", userID)
}
