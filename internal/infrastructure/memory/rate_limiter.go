// Package memory holds process-local implementations used when no shared
// backend is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gestion-ventes/ventes-api/internal/core/domain"
	"github.com/gestion-ventes/ventes-api/internal/core/ports"
)

const sweepEvery = 1024

var _ ports.RateLimiter = (*RateLimiter)(nil)

// window is the counter of one key. It starts on the first hit and resets
// once start+length has passed.
type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window counter per key, the in-process twin of the
// Redis limiter: at most limit requests per key between start and start+window.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	length  time.Duration
	now     func() time.Time
	calls   int
}

func NewRateLimiter(limit int, length time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		length:  length,
		now:     time.Now,
	}
}

func (l *RateLimiter) Allow(_ context.Context, key string) (ports.RateDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}

	w, ok := l.windows[key]
	if !ok || !now.Before(w.start.Add(l.length)) {
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	d := ports.RateDecision{
		Allowed:   w.count <= l.limit,
		Limit:     l.limit,
		Remaining: max(l.limit-w.count, 0),
	}
	if !d.Allowed {
		d.RetryAfter = w.start.Add(l.length).Sub(now)
		return d, domain.ErrRateLimited
	}
	return d, nil
}

// sweep drops windows that have already expired.
func (l *RateLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.start.Add(l.length)) {
			delete(l.windows, k)
		}
	}
}
