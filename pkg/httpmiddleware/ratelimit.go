package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client sliding window limiter.
type RateLimitConfig struct {
	// Max is the number of requests allowed per Window.
	Max    int
	Window time.Duration
	// KeyFunc identifies the client. Defaults to the client IP.
	KeyFunc func(*http.Request) string
	// Skip exempts requests, such as health probes, from limiting.
	Skip func(*http.Request) bool
}

// counter holds the request counts of the current and previous windows.
type counter struct {
	prev      float64
	curr      float64
	currStart time.Time
}

type slidingWindow struct {
	max    int
	window time.Duration

	mu       sync.Mutex
	counters map[string]*counter
}

func newSlidingWindow(limit int, window time.Duration) *slidingWindow {
	return &slidingWindow{
		max:      limit,
		window:   window,
		counters: make(map[string]*counter),
	}
}

// take records a request for key unless the weighted count of the last
// window already reached max.
func (s *slidingWindow) take(key string, now time.Time) (remaining int, reset time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.counters[key]
	if !found {
		c = &counter{currStart: now.Truncate(s.window)}
		s.counters[key] = c
	}
	if elapsed := now.Sub(c.currStart); elapsed >= s.window {
		if elapsed >= 2*s.window {
			c.prev = 0
		} else {
			c.prev = c.curr
		}
		c.curr = 0
		c.currStart = now.Truncate(s.window)
	}

	// The previous window counts in proportion to its overlap with the
	// sliding window ending now.
	weight := math.Max(0, 1-now.Sub(c.currStart).Seconds()/s.window.Seconds())
	used := c.prev*weight + c.curr
	reset = c.currStart.Add(s.window)
	if used >= float64(s.max) {
		return 0, reset, false
	}

	c.curr++
	return max(0, int(float64(s.max)-used-1)), reset, true
}

// evict drops counters idle for two windows.
func (s *slidingWindow) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, c := range s.counters {
		if now.Sub(c.currStart) >= 2*s.window {
			delete(s.counters, key)
		}
	}
}

func (s *slidingWindow) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(2 * s.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.evict(now)
		}
	}
}

// RateLimit limits requests per client. Replies carry X-RateLimit-Limit,
// X-RateLimit-Remaining and X-RateLimit-Reset; rejected requests get 429
// with Retry-After. Counters are never evicted, see RateLimitWithCleanup.
func RateLimit(cfg RateLimitConfig) Middleware {
	return rateLimit(cfg, newSlidingWindow(cfg.Max, cfg.Window))
}

// RateLimitWithCleanup is RateLimit with idle counters evicted in the
// background until ctx is done.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	sw := newSlidingWindow(cfg.Max, cfg.Window)
	go sw.evictLoop(ctx)
	return rateLimit(cfg, sw)
}

func rateLimit(cfg RateLimitConfig, sw *slidingWindow) Middleware {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	limit := strconv.Itoa(cfg.Max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			remaining, reset, ok := sw.take(keyFunc(r), now)

			h := w.Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
			if !ok {
				wait := max(0, reset.Sub(now))
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For address, then X-Real-IP, then
// the host of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
