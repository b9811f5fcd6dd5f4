package scraper

import (
	"math/rand"
	"time"
)

// RateLimiter paces outbound requests to the source site. The delay
// between consecutive requests is drawn uniformly from [minDelay,
// maxDelay] on every call, so the traffic pattern does not look like a
// fixed-interval bot. A RateLimiter belongs to exactly one Scraper and is
// not safe for concurrent use.
type RateLimiter struct {
	minDelay time.Duration
	maxDelay time.Duration
	last     time.Time
}

// NewRateLimiter creates a limiter with the given delay window. A max
// below min is clamped to min.
func NewRateLimiter(minDelay, maxDelay time.Duration) *RateLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RateLimiter{minDelay: minDelay, maxDelay: maxDelay}
}

// Wait blocks until enough time has passed since the previous request.
// The first request in a session is never delayed.
func (rl *RateLimiter) Wait() {
	if rl.last.IsZero() {
		return
	}

	delay := rl.minDelay
	if rl.maxDelay > rl.minDelay {
		delay += time.Duration(rand.Int63n(int64(rl.maxDelay - rl.minDelay)))
	}

	if elapsed := time.Since(rl.last); elapsed < delay {
		time.Sleep(delay - elapsed)
	}
}

// Record marks the completion of a request. Failed requests count toward
// pacing too, so callers invoke Record whether the request succeeded or
// not.
func (rl *RateLimiter) Record() {
	rl.last = time.Now()
}
