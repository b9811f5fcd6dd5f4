package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRateLimiter_FirstRequestNotDelayed verifies a fresh limiter imposes
// no delay before the first request.
func TestRateLimiter_FirstRequestNotDelayed(t *testing.T) {
	rl := NewRateLimiter(200*time.Millisecond, 300*time.Millisecond)

	start := time.Now()
	rl.Wait()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 50*time.Millisecond, "first Wait should return immediately")
}

// TestRateLimiter_ConsecutiveRequestsPaced verifies the gap between two
// consecutive requests is at least the minimum delay.
func TestRateLimiter_ConsecutiveRequestsPaced(t *testing.T) {
	rl := NewRateLimiter(60*time.Millisecond, 90*time.Millisecond)

	rl.Wait()
	rl.Record()

	start := time.Now()
	rl.Wait()
	elapsed := time.Since(start)

	// Allow a little scheduling tolerance below the sampled minimum.
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "second Wait should enforce the delay window")
	assert.Less(t, elapsed, 200*time.Millisecond, "delay should not exceed the window by much")
}

// TestRateLimiter_ElapsedTimeCounts verifies time already spent since the
// last request is subtracted from the sampled delay.
func TestRateLimiter_ElapsedTimeCounts(t *testing.T) {
	rl := NewRateLimiter(50*time.Millisecond, 50*time.Millisecond)

	rl.Wait()
	rl.Record()
	time.Sleep(60 * time.Millisecond)

	start := time.Now()
	rl.Wait()
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 20*time.Millisecond, "delay already served should not be slept again")
}

// TestNewRateLimiter_MaxBelowMin verifies the window is clamped rather
// than producing a negative sampling range.
func TestNewRateLimiter_MaxBelowMin(t *testing.T) {
	rl := NewRateLimiter(80*time.Millisecond, 10*time.Millisecond)

	rl.Wait()
	rl.Record()

	start := time.Now()
	rl.Wait()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 70*time.Millisecond)
}
