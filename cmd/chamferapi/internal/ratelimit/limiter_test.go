package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_AllowPerKey(t *testing.T) {
	l := New(Config{PerMinute: 1, Burst: 2, CleanupInterval: time.Hour})
	defer l.Stop()

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "burst exhausted")

	assert.True(t, l.Allow("10.0.0.2"), "keys are independent")
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Disabled(t *testing.T) {
	l := New(Config{PerMinute: 0})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("k"))
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_CleanupForgetsIdleKeys(t *testing.T) {
	l := New(Config{PerMinute: 10, Burst: 1, CleanupInterval: time.Hour})
	defer l.Stop()

	l.Allow("old")
	l.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	l.Allow("fresh")

	l.cleanup()
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Allow("old"), "forgotten key starts with a full bucket")
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := New(Config{PerMinute: 1})
	l.Stop()
	l.Stop()
}
