package limits

import (
	"net/http"
	"sync"
	"time"
)

// idleBuckets is how long a bucket may sit unused before it is swept.
const idleBuckets = 10 * time.Minute

// TokenBucket is a keyed token-bucket rate limiter. Each key refills at
// rate tokens per second up to burst. A zero or negative rate disables it.
type TokenBucket struct {
	rate  float64
	burst float64
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// NewTokenBucket creates a new token bucket rate limiter.
func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		rate:    rate,
		burst:   float64(burst),
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

// Allow reports whether one more operation for key fits the limit, and
// consumes a token if so.
func (tb *TokenBucket) Allow(key string) bool {
	if tb.rate <= 0 {
		return true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	tb.sweep(now)

	b, ok := tb.buckets[key]
	if !ok {
		b = &bucket{tokens: tb.burst, lastFill: now}
		tb.buckets[key] = b
	}

	b.tokens += now.Sub(b.lastFill).Seconds() * tb.rate
	if b.tokens > tb.burst {
		b.tokens = tb.burst
	}
	b.lastFill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Forget drops the bucket for key.
func (tb *TokenBucket) Forget(key string) {
	tb.mu.Lock()
	delete(tb.buckets, key)
	tb.mu.Unlock()
}

// Len returns the number of tracked keys.
func (tb *TokenBucket) Len() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.buckets)
}

// sweep drops idle buckets at most once per idle period. Callers hold mu.
func (tb *TokenBucket) sweep(now time.Time) {
	if now.Sub(tb.lastSweep) < idleBuckets {
		return
	}
	tb.lastSweep = now
	for key, b := range tb.buckets {
		if now.Sub(b.lastFill) >= idleBuckets {
			delete(tb.buckets, key)
		}
	}
}

// Middleware rejects requests over the limit with 429. Requests are keyed
// by keyFunc.
func (tb *TokenBucket) Middleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tb.Allow(keyFunc(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
