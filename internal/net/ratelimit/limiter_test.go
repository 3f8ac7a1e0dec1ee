package ratelimit

import (
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestLimiter_Allow(t *testing.T) {
	limiter := NewLimiter(2.0, 2)
	fixedClock(limiter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"), "burst exhausted")
}

func TestLimiter_IndependentClients(t *testing.T) {
	limiter := NewLimiter(1.0, 1)
	fixedClock(limiter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.2"))
	assert.Equal(t, 2, limiter.Clients())
}

func TestLimiter_Refill(t *testing.T) {
	limiter := NewLimiter(1.0, 1)
	now := fixedClock(limiter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	*now = now.Add(time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestLimiter_SweepsIdleClients(t *testing.T) {
	limiter := NewLimiter(1, 1)
	now := fixedClock(limiter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))

	*now = now.Add(10 * time.Minute)
	assert.True(t, limiter.Allow("10.0.0.2"))
	assert.Equal(t, 1, limiter.Clients())
}

func TestLimiter_Concurrency(t *testing.T) {
	limiter := NewLimiter(1, 10)
	fixedClock(limiter, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow("10.0.0.1") {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), allowed)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.5:54321"
	assert.Equal(t, "192.168.1.5", ClientKey(req))

	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientKey(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientKey(req))
}
