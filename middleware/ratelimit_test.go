package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("10.0.0.1")
		assert.True(t, ok, "request %d should pass", i+1)
	}

	ok, retryAfter := rl.allow("10.0.0.1")
	assert.False(t, ok)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	ok, _ := rl.allow("10.0.0.1")
	assert.True(t, ok)

	ok, _ = rl.allow("10.0.0.2")
	assert.True(t, ok)

	ok, _ = rl.allow("10.0.0.1")
	assert.False(t, ok)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newRateLimiter(1, 10*time.Millisecond)

	ok, _ := rl.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = rl.allow("10.0.0.1")
	assert.False(t, ok)

	time.Sleep(15 * time.Millisecond)

	ok, _ = rl.allow("10.0.0.1")
	assert.True(t, ok)
}
