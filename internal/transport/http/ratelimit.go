package http

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter. A zero limit disables it.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	start    time.Time
	counter  int
	reported bool
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// allow reports whether another event fits the current window. notify is
// true for the first rejected event of a window only.
func (r *rateLimiter) allow() (ok, notify bool) {
	if r == nil || r.limit <= 0 {
		return true, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.start.IsZero() || now.Sub(r.start) >= r.window {
		r.start = now
		r.counter = 0
		r.reported = false
	}

	r.counter++
	if r.counter <= r.limit {
		return true, false
	}
	if r.reported {
		return false, false
	}
	r.reported = true
	return false, true
}
