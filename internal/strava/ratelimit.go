package strava

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"elevedit/internal/timeutil"
)

// Strava allows 100 requests per 15 minutes and 1000 per day. An import
// costs two requests, so the limiter mostly matters when the activity list
// is refreshed repeatedly.
const (
	shortWindowLimit = 100
	dailyWindowLimit = 1000
	shortWindow      = 15 * time.Minute
)

// window is one quota period. next computes when a period starting at now resets.
type window struct {
	limit    int
	used     int
	resetsAt time.Time
	next     func(now time.Time) time.Time
}

func (w *window) roll(now time.Time) {
	if !now.Before(w.resetsAt) {
		w.used = 0
		w.resetsAt = w.next(now)
	}
}

func (w *window) exhausted() bool { return w.used >= w.limit }

func (w *window) remaining() int { return max(w.limit-w.used, 0) }

// RateLimiter spaces requests and blocks once a quota window is used up
type RateLimiter struct {
	mu sync.Mutex

	short window
	daily window

	minInterval time.Duration
	lastRequest time.Time

	clock timeutil.Clock
}

// NewRateLimiter creates a limiter with Strava's published quotas
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(timeutil.RealClock{}, 150*time.Millisecond)
}

func newRateLimiter(clock timeutil.Clock, minInterval time.Duration) *RateLimiter {
	now := clock.Now()
	r := &RateLimiter{
		short:       window{limit: shortWindowLimit, next: func(t time.Time) time.Time { return t.Add(shortWindow) }},
		daily:       window{limit: dailyWindowLimit, next: nextDay},
		minInterval: minInterval,
		clock:       clock,
	}
	r.short.resetsAt = r.short.next(now)
	r.daily.resetsAt = r.daily.next(now)
	return r
}

func nextDay(t time.Time) time.Time {
	return t.Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// Wait blocks until a request fits within both quotas and the minimum
// spacing, or until ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		now := r.clock.Now()
		r.short.roll(now)
		r.daily.roll(now)

		var delay time.Duration
		switch {
		case r.short.exhausted():
			delay = r.short.resetsAt.Sub(now)
		case r.daily.exhausted():
			delay = r.daily.resetsAt.Sub(now)
		default:
			delay = r.minInterval - r.clock.Since(r.lastRequest)
		}
		if delay <= 0 {
			break
		}

		r.mu.Unlock()
		err := sleep(ctx, delay)
		r.mu.Lock()
		if err != nil {
			return err
		}
	}

	r.short.used++
	r.daily.used++
	r.lastRequest = r.clock.Now()
	return nil
}

// sleep waits for d or until ctx is done. The caller must not hold r.mu.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders syncs usage and limits with the server's view.
// Strava sends "short,daily" pairs, e.g. X-RateLimit-Usage: 34,512
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if short, daily, ok := parsePair(h.Get("X-RateLimit-Usage")); ok {
		r.short.used, r.daily.used = short, daily
	}
	if short, daily, ok := parsePair(h.Get("X-RateLimit-Limit")); ok {
		r.short.limit, r.daily.limit = short, daily
	}
}

func parsePair(v string) (a, b int, ok bool) {
	first, second, found := strings.Cut(v, ",")
	if !found {
		return 0, 0, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(first))
	b, errB := strconv.Atoi(strings.TrimSpace(second))
	return a, b, errA == nil && errB == nil
}

// Status returns the requests left in the short and daily windows
func (r *RateLimiter) Status() (shortRemaining, dailyRemaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.remaining(), r.daily.remaining()
}

// Usage returns current usage counts
func (r *RateLimiter) Usage() (shortUsage, dailyUsage int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.short.used, r.daily.used
}
