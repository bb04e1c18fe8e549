// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// KeyFunc picks the bucket a request is counted in, usually the client IP.
type KeyFunc func(*http.Request) string

// Config describes one limiter.
type Config struct {
	// Name labels the limiter in metrics.
	Name string
	// Limit is the number of requests allowed per key and window.
	Limit int
	// Window defaults to one minute.
	Window time.Duration
	// IdleTTL is how long an untouched bucket is kept. Defaults to ten windows.
	IdleTTL time.Duration
}

// Limiter allows Limit requests per key in each Window.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	rejected atomic.Int64
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	start time.Time
	seen  time.Time
	count int
}

// New returns a limiter and starts its sweeper. Call Stop to release it.
func New(cfg Config) *Limiter {
	l := newLimiter(cfg, time.Now)
	go l.sweep()
	return l
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = 120
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 10 * cfg.Window
	}
	return &Limiter{
		cfg:     cfg,
		now:     now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
}

// Name is the configured label.
func (l *Limiter) Name() string { return l.cfg.Name }

// Allow counts one request for key. When the key is over its limit it
// returns false and the time until its window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= l.cfg.Window {
		l.buckets[key] = &bucket{start: now, seen: now, count: 1}
		return true, 0
	}
	b.seen = now
	b.count++
	if b.count <= l.cfg.Limit {
		return true, 0
	}
	l.rejected.Add(1)
	return false, l.cfg.Window - now.Sub(b.start)
}

// Prune drops buckets idle longer than IdleTTL and returns how many went.
func (l *Limiter) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.cfg.IdleTTL)
	n := 0
	for key, b := range l.buckets {
		if b.seen.Before(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.cfg.IdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Prune()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Metrics is a snapshot for the /metrics endpoint.
type Metrics struct {
	Name     string
	Rejected int64
	Keys     int
}

func (l *Limiter) Metrics() Metrics {
	l.mu.Lock()
	keys := len(l.buckets)
	l.mu.Unlock()
	return Metrics{Name: l.cfg.Name, Rejected: l.rejected.Load(), Keys: keys}
}

// Middleware rejects requests over the limit with a Retry-After header.
// onLimit writes the body; nil falls back to a plain 429.
func (l *Limiter) Middleware(key KeyFunc, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, retry := l.Allow(key(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			secs := int(retry / time.Second)
			if retry%time.Second != 0 {
				secs++
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		})
	}
}
