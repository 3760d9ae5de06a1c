package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(limit int, window time.Duration) (*Limiter, *time.Time) {
	current := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	l := NewLimiter(limit, window)
	l.now = func() time.Time { return current }
	return l, &current
}

func TestAllowWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("1.2.3.4"), "11th request should be denied")
	assert.False(t, l.Allow("1.2.3.4"), "denials repeat until the window resets")
}

func TestDenialDoesNotConsumeCapacity(t *testing.T) {
	l, _ := newTestLimiter(2, time.Minute)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	for i := 0; i < 5; i++ {
		assert.False(t, l.Allow("k"))
	}
	assert.Equal(t, 0, l.Remaining("k"))
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("a"))
	}
	assert.False(t, l.Allow("a"))

	// A saturated neighbour must not affect a fresh key.
	assert.True(t, l.Allow("b"))
	assert.Equal(t, 2, l.Remaining("b"))
}

func TestWindowReset(t *testing.T) {
	l, current := newTestLimiter(2, time.Minute)

	assert.True(t, l.Allow("k"))
	assert.True(t, l.Allow("k"))
	assert.False(t, l.Allow("k"))

	*current = current.Add(61 * time.Second)

	assert.True(t, l.Allow("k"), "a new window starts after the reset time passes")
	assert.Equal(t, 1, l.Remaining("k"))
}

func TestRemainingForUnseenKey(t *testing.T) {
	l, _ := newTestLimiter(10, time.Minute)
	assert.Equal(t, 10, l.Remaining("never-seen"))
}
