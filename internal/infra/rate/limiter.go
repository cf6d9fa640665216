// Package rate implements the dual-window in-memory rate limiter.
package rate

import (
	"sync"
	"time"

	"passwordless/internal/domain/service"
)

// bucket is a continuously refilling token bucket. Capacity equals the
// window limit and refill spreads the full capacity evenly across the
// window.
type bucket struct {
	tokens   float64
	capacity float64
	window   time.Duration
	last     time.Time
}

func (b *bucket) configure(limit int, now time.Time) {
	capacity := float64(limit)
	if b.capacity == capacity {
		return
	}
	if b.last.IsZero() {
		b.tokens = capacity
	} else if b.tokens > capacity {
		b.tokens = capacity
	}
	b.capacity = capacity
	b.last = now
}

func (b *bucket) refill(now time.Time) {
	if b.last.IsZero() {
		b.last = now

		return
	}
	elapsed := now.Sub(b.last)
	if elapsed <= 0 {
		return
	}
	b.tokens += elapsed.Seconds() / b.window.Seconds() * b.capacity
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.last = now
}

// callerState holds both windows for one key under a single lock so a
// request consumes from both atomically.
type callerState struct {
	mu     sync.Mutex
	minute bucket
	hour   bucket
}

type limiter struct {
	mu      sync.RWMutex
	callers map[string]*callerState
	now     func() time.Time
}

// NewLimiter creates the in-memory dual-window limiter.
func NewLimiter() service.RateLimiter {
	return &limiter{
		callers: make(map[string]*callerState),
		now:     time.Now,
	}
}

// Allow admits the request only when both windows have capacity and, on
// admission, consumes one unit from each. A denial consumes nothing, so a
// caller exhausted on one window does not burn the other.
func (l *limiter) Allow(key string, perMinute, perHour int) bool {
	if perMinute <= 0 && perHour <= 0 {
		return true
	}

	state := l.caller(key)
	now := l.now()

	state.mu.Lock()
	defer state.mu.Unlock()

	state.minute.configure(perMinute, now)
	state.hour.configure(perHour, now)
	state.minute.refill(now)
	state.hour.refill(now)

	minuteOK := perMinute <= 0 || state.minute.tokens >= 1
	hourOK := perHour <= 0 || state.hour.tokens >= 1
	if !minuteOK || !hourOK {
		return false
	}

	if perMinute > 0 {
		state.minute.tokens--
	}
	if perHour > 0 {
		state.hour.tokens--
	}

	return true
}

// Reset discards the caller's accumulated usage.
func (l *limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.callers, key)
}

func (l *limiter) caller(key string) *callerState {
	l.mu.RLock()
	state, ok := l.callers[key]
	l.mu.RUnlock()
	if ok {
		return state
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if state, ok = l.callers[key]; ok {
		return state
	}
	state = &callerState{
		minute: bucket{window: time.Minute},
		hour:   bucket{window: time.Hour},
	}
	l.callers[key] = state

	return state
}
