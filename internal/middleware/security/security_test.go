package security_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"gastos/internal/middleware/security"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestExtractClientIP(t *testing.T) {
	d := security.NewDetector()

	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "203.0.113.9:5000", "", "203.0.113.9"},
		{"trusted proxy", "10.0.0.2:5000", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"untrusted proxy is ignored", "203.0.113.9:5000", "198.51.100.7", "203.0.113.9"},
		{"garbage forwarded", "10.0.0.2:5000", "not-an-ip", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, d.ExtractClientIP(r))
		})
	}
	assert.Equal(t, int64(1), d.GetMetrics().SpoofedForwarding)
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := security.NewDetector()

	assert.False(t, d.DetectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/api/categoria", nil)))
	assert.True(t, d.DetectSuspiciousRequest(httptest.NewRequest(http.MethodGet, "/.env", nil)))

	r := httptest.NewRequest(http.MethodGet, "/api/usuario", nil)
	r.Header.Set("User-Agent", "sqlmap/1.7")
	assert.True(t, d.DetectSuspiciousRequest(r))
	assert.Equal(t, int64(2), d.GetMetrics().SuspiciousRequests)
}

func TestSecurityHeaders(t *testing.T) {
	h := security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware(http.HandlerFunc(ok))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"), "HSTS is only sent over TLS")
}
