package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(start time.Time) (*limiter, *time.Time) {
	now := start
	l := NewLimiter().(*limiter)
	l.now = func() time.Time { return now }

	return l, &now
}

func TestLimiter_MinuteWindowExhausts(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for i := range 3 {
		assert.True(t, l.Allow("app-1", 3, 100), "request %d should pass", i)
	}
	assert.False(t, l.Allow("app-1", 3, 100))
}

func TestLimiter_HourWindowExhausts(t *testing.T) {
	l, now := newTestLimiter(time.Unix(0, 0))

	// The hour budget is smaller than the per-minute budget allows across
	// the hour, so it becomes the binding constraint.
	for i := range 5 {
		assert.True(t, l.Allow("app-1", 5, 5), "request %d should pass", i)
	}
	assert.False(t, l.Allow("app-1", 5, 5))

	// A minute later the minute window has refilled but the hour window
	// has only recovered a fraction of a token.
	*now = now.Add(time.Minute)
	assert.False(t, l.Allow("app-1", 5, 5))

	// A full hour restores the hour budget.
	*now = now.Add(time.Hour)
	assert.True(t, l.Allow("app-1", 5, 5))
}

func TestLimiter_DenialConsumesNothing(t *testing.T) {
	l, now := newTestLimiter(time.Unix(0, 0))

	assert.True(t, l.Allow("app-1", 1, 10))
	for range 5 {
		assert.False(t, l.Allow("app-1", 1, 10))
	}

	// Only the one admitted request consumed hour budget; after the minute
	// refills, nine hour tokens remain.
	*now = now.Add(time.Minute)
	assert.True(t, l.Allow("app-1", 1, 10))
}

func TestLimiter_RefillIsContinuous(t *testing.T) {
	l, now := newTestLimiter(time.Unix(0, 0))

	for range 6 {
		l.Allow("app-1", 6, 1000)
	}
	assert.False(t, l.Allow("app-1", 6, 1000))

	// Eleven seconds refills just over one token of a six-per-minute budget.
	*now = now.Add(11 * time.Second)
	assert.True(t, l.Allow("app-1", 6, 1000))
	assert.False(t, l.Allow("app-1", 6, 1000))
}

func TestLimiter_CallersAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	assert.True(t, l.Allow("app-1", 1, 10))
	assert.False(t, l.Allow("app-1", 1, 10))

	// A different caller has its own buckets.
	assert.True(t, l.Allow("app-2", 1, 10))
}

func TestLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	assert.True(t, l.Allow("app-1", 1, 1))
	assert.False(t, l.Allow("app-1", 1, 1))

	l.Reset("app-1")
	assert.True(t, l.Allow("app-1", 1, 1))
}

func TestLimiter_NonPositiveLimitsAreUnlimited(t *testing.T) {
	l, _ := newTestLimiter(time.Unix(0, 0))

	for range 100 {
		assert.True(t, l.Allow("app-1", 0, 0))
	}
}
