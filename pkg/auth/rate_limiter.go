package auth

import (
	"context"
	"sync"
	"time"
)

// RateLimiter decides whether a keyed request may proceed
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// Clock returns the current time; tests substitute a fake
type Clock func() time.Time

// SlidingWindowLimiter allows at most limit requests per key within any
// window-long interval
type SlidingWindowLimiter struct {
	mu         sync.Mutex
	windows    map[string][]time.Time
	limit      int
	windowSize time.Duration
	now        Clock
}

// NewSlidingWindowLimiter creates a new sliding window rate limiter
func NewSlidingWindowLimiter(limit int, windowSize time.Duration) *SlidingWindowLimiter {
	return NewSlidingWindowLimiterWithClock(limit, windowSize, time.Now)
}

// NewSlidingWindowLimiterWithClock creates a limiter reading time from now
func NewSlidingWindowLimiterWithClock(limit int, windowSize time.Duration, now Clock) *SlidingWindowLimiter {
	if now == nil {
		now = time.Now
	}
	return &SlidingWindowLimiter{
		windows:    make(map[string][]time.Time),
		limit:      limit,
		windowSize: windowSize,
		now:        now,
	}
}

// Limit returns the number of requests allowed per window
func (l *SlidingWindowLimiter) Limit() int { return l.limit }

// Window returns the window length
func (l *SlidingWindowLimiter) Window() time.Duration { return l.windowSize }

// Allow records a request for key if the window has room
func (l *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	requests := l.prune(key, now)
	if len(requests) >= l.limit {
		return false, nil
	}
	l.windows[key] = append(requests, now)
	return true, nil
}

// RetryAfter returns how long until key may make another request
func (l *SlidingWindowLimiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	requests := l.prune(key, now)
	if len(requests) < l.limit || len(requests) == 0 {
		return 0
	}
	return requests[0].Add(l.windowSize).Sub(now)
}

// Remaining returns how many requests key may still make in the current window
func (l *SlidingWindowLimiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	left := l.limit - len(l.prune(key, l.now()))
	if left < 0 {
		return 0
	}
	return left
}

// Reset forgets all requests for key
func (l *SlidingWindowLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// prune drops timestamps outside the window; caller holds mu
func (l *SlidingWindowLimiter) prune(key string, now time.Time) []time.Time {
	windowStart := now.Add(-l.windowSize)
	requests := l.windows[key]
	i := 0
	for i < len(requests) && !requests[i].After(windowStart) {
		i++
	}
	requests = requests[i:]
	if len(requests) == 0 {
		delete(l.windows, key)
		return nil
	}
	l.windows[key] = requests
	return requests
}

// KeyedRateLimiter prefixes keys so one limiter can serve several scopes
type KeyedRateLimiter struct {
	prefix  string
	limiter RateLimiter
}

// NewUserRateLimiter limits requests per authenticated user
func NewUserRateLimiter(requestsPerMinute int) *KeyedRateLimiter {
	return &KeyedRateLimiter{prefix: "user:", limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// NewIPRateLimiter limits requests per client address
func NewIPRateLimiter(requestsPerMinute int) *KeyedRateLimiter {
	return &KeyedRateLimiter{prefix: "ip:", limiter: NewSlidingWindowLimiter(requestsPerMinute, time.Minute)}
}

// Allow checks the scoped key
func (l *KeyedRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.limiter.Allow(ctx, l.prefix+key)
}

// Reset clears the scoped key
func (l *KeyedRateLimiter) Reset(ctx context.Context, key string) error {
	return l.limiter.Reset(ctx, l.prefix+key)
}
