package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(time.Minute, 2)
	l.now = func() time.Time { return clock }

	assert.Equal(t, 2, l.Remaining("a"))
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.Equal(t, 0, l.Remaining("a"))

	assert.True(t, l.Allow("b"), "keys are independent")

	clock = clock.Add(61 * time.Second)
	assert.Equal(t, 2, l.Remaining("a"))
	assert.True(t, l.Allow("a"))
}

func TestLimiterSlidingWindow(t *testing.T) {
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(time.Minute, 2)
	l.now = func() time.Time { return clock }

	l.Allow("a")
	clock = clock.Add(40 * time.Second)
	l.Allow("a")
	assert.False(t, l.Allow("a"))

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, l.Remaining("a"), "first hit has left the window")
	assert.True(t, l.Allow("a"))
}
