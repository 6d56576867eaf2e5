package limits

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectionLimiter(t *testing.T) {
	cl := NewConnectionLimiter(2)

	assert.True(t, cl.Acquire("1.1.1.1"))
	assert.True(t, cl.Acquire("1.1.1.1"))
	assert.False(t, cl.Acquire("1.1.1.1"))
	assert.True(t, cl.Acquire("2.2.2.2"))
	assert.Equal(t, 2, cl.Count("1.1.1.1"))

	cl.Release("1.1.1.1")
	assert.True(t, cl.Acquire("1.1.1.1"))

	cl.Release("2.2.2.2")
	cl.Release("2.2.2.2")
	assert.Equal(t, 0, cl.Count("2.2.2.2"))
}

func TestConnectionLimiterLargeLimit(t *testing.T) {
	cl := NewConnectionLimiter(math.MaxInt32 + 2)

	assert.True(t, cl.Acquire("1.1.1.1"))
	assert.Equal(t, 1, cl.Count("1.1.1.1"), "a large limit must still count connections")
	cl.Release("1.1.1.1")
	assert.Equal(t, 0, cl.Count("1.1.1.1"))
}

func TestConnectionLimiterDisabled(t *testing.T) {
	cl := NewConnectionLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, cl.Acquire("1.1.1.1"))
	}
	assert.Equal(t, 0, cl.Count("1.1.1.1"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	r.Header.Set("X-Real-IP", "198.51.100.1")

	assert.Equal(t, "10.0.0.1", ClientIP(r, false))
	assert.Equal(t, "203.0.113.7", ClientIP(r, true))

	r.Header.Del("X-Forwarded-For")
	assert.Equal(t, "198.51.100.1", ClientIP(r, true))

	r.Header.Del("X-Real-IP")
	r.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(r, true))
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestTokenBucket(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tb := NewTokenBucket(2, 3)
	tb.now = clock.now

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow("a"), "burst %d", i)
	}
	assert.False(t, tb.Allow("a"))
	assert.True(t, tb.Allow("b"), "keys are independent")

	clock.t = clock.t.Add(500 * time.Millisecond)
	assert.True(t, tb.Allow("a"))
	assert.False(t, tb.Allow("a"))

	clock.t = clock.t.Add(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow("a"), "refill is capped at burst")
	}
	assert.False(t, tb.Allow("a"))
}

func TestTokenBucketSweepAndForget(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tb := NewTokenBucket(1, 1)
	tb.now = clock.now

	tb.Allow("a")
	tb.Allow("b")
	assert.Equal(t, 2, tb.Len())

	tb.Forget("a")
	assert.Equal(t, 1, tb.Len())

	clock.t = clock.t.Add(2 * idleBuckets)
	tb.Allow("c")
	assert.Equal(t, 1, tb.Len())
}

func TestTokenBucketDisabled(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, tb.Allow("a"))
	}
	assert.Equal(t, 0, tb.Len())
}

func TestTokenBucketMiddleware(t *testing.T) {
	tb := NewTokenBucket(0.001, 1)
	h := tb.Middleware(func(r *http.Request) string { return ClientIP(r, false) })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
