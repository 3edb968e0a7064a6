package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *time.Time) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(limit, window)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("192.168.4.2"), "request %d", i+1)
	}
	assert.False(t, limiter.Allow("192.168.4.2"), "4th request should be blocked")
	assert.True(t, limiter.Allow("192.168.4.3"), "different IP should be allowed")
}

func TestRateLimiter_WindowExpiration(t *testing.T) {
	limiter, now := newTestLimiter(2, 500*time.Millisecond)

	limiter.Allow("192.168.4.2")
	limiter.Allow("192.168.4.2")
	assert.False(t, limiter.Allow("192.168.4.2"))

	*now = now.Add(600 * time.Millisecond)
	assert.True(t, limiter.Allow("192.168.4.2"))
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	limiter, now := newTestLimiter(5, time.Second)

	limiter.Allow("192.168.4.2")
	limiter.Allow("192.168.4.3")
	assert.Equal(t, 2, limiter.Clients())

	*now = now.Add(2 * time.Second)
	limiter.Allow("192.168.4.4")
	assert.Equal(t, 1, limiter.Clients())
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
