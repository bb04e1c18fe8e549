package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	OK(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = fmt.Sprintf("failed: %v", err)
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.Metrics().Keys,
		"login_clients":  s.loginLimiter.Metrics().Keys,
	}
	if c := s.services.Dashboard.Cache(); c != nil {
		checks["dashboard_cache"] = map[string]any{"entries": c.Size()}
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	traceMetrics := s.tracer.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	var b strings.Builder
	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(&b, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	if c := s.services.Dashboard.Cache(); c != nil {
		stats := c.Stats()
		metric("dashboard_cache_hits_total", "counter", "Dashboard cache hits", stats.Hits)
		metric("dashboard_cache_misses_total", "counter", "Dashboard cache misses", stats.Misses)
		metric("dashboard_cache_entries", "gauge", "Current dashboard cache entries", stats.Size)
	}
	for _, l := range []*ratelimit.Limiter{s.limiter, s.loginLimiter} {
		m := l.Metrics()
		metric("rate_limit_"+m.Name+"_rejected_total", "counter", "Requests rejected by the "+m.Name+" limiter", m.Rejected)
		metric("rate_limit_"+m.Name+"_clients", "gauge", "Clients tracked by the "+m.Name+" limiter", m.Keys)
	}
	metric("suspicious_requests_total", "counter", "Requests matching a probing pattern", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.started).Seconds()))

	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	usuarioID, err := ParseOptionalID(r, "usuarioId")
	if err != nil {
		BadRequest(err.Error()).Write(w)
		return
	}
	d, err := s.services.Dashboard.Summary(r.Context(), usuarioID)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	OK(d).Write(w)
}

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in core.UserInput
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	u, err := s.services.Auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	Created(fmt.Sprintf("/api/usuario/%d", u.ID), u).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := DecodeJSON(w, r, &in); err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	v := core.NewValidationError()
	if strings.TrimSpace(in.Email) == "" {
		v.Add("email", "The email field is required.")
	}
	if in.Senha == "" {
		v.Add("senha", "The senha field is required.")
	}
	if err := v.Err(); err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}

	login, err := s.services.Auth.Login(r.Context(), in.Email, in.Senha)
	if err != nil {
		writeError(w, r, log.OpLogin, err)
		return
	}
	OK(login).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	a, _ := AuthFromContext(r.Context())
	if err := s.services.Auth.Logout(r.Context(), a.Session.ID); err != nil {
		writeError(w, r, log.OpLogout, err)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	a, _ := AuthFromContext(r.Context())
	OK(a.User).Write(w)
}
