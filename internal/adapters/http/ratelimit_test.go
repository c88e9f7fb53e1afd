package http

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, time.Second)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(1100 * time.Millisecond)
	assert.True(t, rl.Allow("a"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("a"))
	}
}

func TestRateLimiterPrunesIdleKeys(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(5, time.Second)
	rl.now = func() time.Time { return now }

	for _, key := range []string{"a", "b", "c"} {
		assert.True(t, rl.Allow(key))
	}
	assert.Equal(t, 3, rl.Len())

	now = now.Add(2 * time.Second)
	assert.True(t, rl.Allow("d"))
	assert.Equal(t, 1, rl.Len())
}
