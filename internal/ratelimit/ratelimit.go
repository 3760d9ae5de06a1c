// Package ratelimit implements a fixed-window request counter keyed by
// caller identity.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// Limiter bounds the request rate per key. A window admits up to limit
// requests, then denies until the window expires; the counter resets
// wholesale at the boundary.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window

	limit    int
	duration time.Duration

	now func() time.Time
}

func NewLimiter(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}

	go l.janitor()

	return l
}

// Allow reports whether a request from key may proceed, counting it if so.
// Denials do not consume window capacity.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.duration)}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Remaining returns how many requests key may still make in its current
// window. A key with no window has the full limit available.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || l.now().After(w.resetAt) {
		return l.limit
	}
	remaining := l.limit - w.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// janitor drops expired windows so the map stays bounded by the number
// of keys active within one window.
func (l *Limiter) janitor() {
	ticker := time.NewTicker(l.duration)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := l.now()
		for key, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}
