package user

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles login attempts per email with a token bucket.
type AttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewAttemptLimiter allows burst attempts at once, refilled every interval.
// A non-positive burst disables throttling.
func NewAttemptLimiter(interval time.Duration, burst int) *AttemptLimiter {
	return &AttemptLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     rate.Every(interval),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether another attempt for key may proceed.
func (l *AttemptLimiter) Allow(key string) bool {
	if l.burst <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Cleanup drops limiters idle for longer than maxIdle.
func (l *AttemptLimiter) Cleanup(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(l.limiters, key)
		}
	}
}
