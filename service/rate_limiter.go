package services

import (
	"sync"
	"time"
)

// RateLimiter caps calls to an external API per key within a fixed window.
type RateLimiter struct {
	mu           sync.Mutex
	requestCount map[string]int
	limit        int
	window       time.Duration
	windowStart  time.Time
	now          func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requestCount: make(map[string]int),
		limit:        limit,
		window:       window,
		windowStart:  time.Now(),
		now:          time.Now,
	}
}

// Allow records a call for key and reports whether it is within the limit.
// Counts for every key start over once the window has elapsed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.windowStart) >= rl.window {
		rl.requestCount = make(map[string]int)
		rl.windowStart = now
	}
	rl.requestCount[key]++
	return rl.requestCount[key] <= rl.limit
}

// OCR.space free tier allows a few hundred calls per day; keep bursts small.
var ocrRateLimiter = NewRateLimiter(20, time.Minute)
