package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("ip:1.2.3.4"), "request %d should be allowed", i)
	}
	assert.False(t, rl.Allow("ip:1.2.3.4"), "fourth request should be rejected")

	// Independent keys don't share the budget
	assert.True(t, rl.Allow("ip:5.6.7.8"))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(50*time.Millisecond, 1)

	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("k"), "budget should recover after the window passes")
}

func TestGetIPKey(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "ip:10.0.0.1:1234", GetIPKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.7", GetIPKey(r))
}
