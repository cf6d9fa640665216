package service

// RateLimiter throttles callers against two sliding windows at once. A
// request is admitted only when both the per-minute and per-hour budgets
// have capacity; admission consumes one unit from each atomically, so a
// denied request leaves both budgets untouched.
type RateLimiter interface {
	// Allow reports whether the caller may proceed under the given limits.
	// Buckets are created lazily per key; changed limits take effect on the
	// next call.
	Allow(key string, perMinute, perHour int) bool

	// Reset discards all accumulated usage for the caller.
	Reset(key string)
}
