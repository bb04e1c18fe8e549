package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestAllowCountsPerKeyAndWindow(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := newLimiter(Config{Name: "login", Limit: 2, Window: time.Minute}, c.now)

	ok, _ := l.Allow("1.1.1.1")
	assert.True(t, ok)
	c.advance(10 * time.Second)
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok)

	ok, retry := l.Allow("1.1.1.1")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, retry)

	ok, _ = l.Allow("2.2.2.2")
	assert.True(t, ok, "other keys have their own bucket")

	c.advance(50 * time.Second)
	ok, _ = l.Allow("1.1.1.1")
	assert.True(t, ok, "a new window starts")

	m := l.Metrics()
	assert.Equal(t, "login", m.Name)
	assert.Equal(t, int64(1), m.Rejected)
	assert.Equal(t, 2, m.Keys)
}

func TestPruneDropsIdleBuckets(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := newLimiter(Config{Limit: 5, Window: time.Minute, IdleTTL: 5 * time.Minute}, c.now)

	l.Allow("old")
	c.advance(4 * time.Minute)
	l.Allow("fresh")
	c.advance(2 * time.Minute)

	assert.Equal(t, 1, l.Prune())
	assert.Equal(t, 1, l.Metrics().Keys)
}

func TestDefaults(t *testing.T) {
	l := newLimiter(Config{}, time.Now)
	assert.Equal(t, 120, l.cfg.Limit)
	assert.Equal(t, time.Minute, l.cfg.Window)
	assert.Equal(t, 10*time.Minute, l.cfg.IdleTTL)
}

func TestMiddlewareSetsRetryAfter(t *testing.T) {
	c := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	l := newLimiter(Config{Limit: 1, Window: time.Minute}, c.now)

	h := l.Middleware(func(*http.Request) string { return "k" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	c.advance(1500 * time.Millisecond)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "59", rec.Header().Get("Retry-After"))
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(Config{Limit: 1})
	l.Stop()
	l.Stop()
}
