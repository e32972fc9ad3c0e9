package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter decides whether one more request for key is allowed. An error
// means the backend failed, not that the key is over its limit.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// LimitBy answers 429 with Retry-After once limiter denies a request's
// key. keyFunc defaults to GetClientIP. A failing backend fails open.
func LimitBy(limiter Limiter, keyFunc func(r *http.Request) string, retryAfter time.Duration) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = GetClientIP
	}
	retry := strconv.Itoa(max(1, int(retryAfter.Seconds())))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), keyFunc(r))
			switch {
			case err != nil:
				GetLogger(r.Context()).Warn("rate limiter unavailable, allowing request", "error", err)
			case !allowed:
				w.Header().Set("Retry-After", retry)
				respondTooManyRequests(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiterConfig configures the in-process token bucket limiter used
// when Redis is not configured.
type RateLimiterConfig struct {
	RequestsPerSecond float64 // refill rate
	BurstSize         int     // bucket capacity
	CleanupInterval   time.Duration
	KeyFunc           func(r *http.Request) string // defaults to GetClientIP
}

// DefaultRateLimiterConfig is the API-wide limit.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{RequestsPerSecond: 10, BurstSize: 20, CleanupInterval: time.Minute, KeyFunc: GetClientIP}
}

// StrictRateLimiterConfig guards register and login.
func StrictRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 5, CleanupInterval: time.Minute, KeyFunc: GetClientIP}
}

type bucket struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// take refills the bucket for the time since its last use and spends one
// token if it can.
func (b *bucket) take(now time.Time, rate float64, capacity int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = min(float64(capacity), b.tokens+now.Sub(b.last).Seconds()*rate)
	b.last = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// idle reports whether the bucket is full again and unused for d.
func (b *bucket) idle(now time.Time, d time.Duration, capacity int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens >= float64(capacity) && now.Sub(b.last) > d
}

// RateLimiter keeps one token bucket per key in memory. Limits are per
// process, so with several replicas each one enforces its own.
type RateLimiter struct {
	config RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

var _ Limiter = (*RateLimiter)(nil)

// NewRateLimiter starts a limiter and its janitor goroutine. Call Stop
// when done.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = GetClientIP
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}

	rl := &RateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

func (rl *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rl.config.BurstSize), last: now}
		rl.buckets[key] = b
	}
	rl.mu.Unlock()

	return b.take(now, rl.config.RequestsPerSecond, rl.config.BurstSize), nil
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				if b.idle(now, rl.config.CleanupInterval, rl.config.BurstSize) {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the janitor goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Middleware limits by the configured key with a one second Retry-After.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return LimitBy(rl, rl.config.KeyFunc, time.Second)(next)
}
