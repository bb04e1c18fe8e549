package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps is everything the server needs to answer requests.
type Deps struct {
	Services           *services.Services
	Store              Pinger
	Logger             *log.Logger
	RateLimitPerMinute int
	// LoginAttemptsPerMinute bounds login and register calls per client.
	LoginAttemptsPerMinute int
	AuthRequired           bool
	TrustedProxies         []string
}

type Server struct {
	http.Server

	services     *services.Services
	store        Pinger
	limiter      *ratelimit.Limiter
	loginLimiter *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		services:     deps.Services,
		store:        deps.Store,
		limiter:      ratelimit.New(ratelimit.Config{Name: "api", Limit: deps.RateLimitPerMinute}),
		loginLimiter: ratelimit.New(ratelimit.Config{Name: "login", Limit: loginLimit(deps.LoginAttemptsPerMinute)}),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
		started:      time.Now(),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(logger, deps.AuthRequired),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(logger *log.Logger, authRequired bool) http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(log.Middleware(logger, trace.GetRequestID))
	r.Use(middleware.Recoverer)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.APIHeadersConfig()).Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) { NotFound().Write(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewJSONResponse().Status(http.StatusMethodNotAllowed).Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.Middleware(s.detector.ExtractClientIP, tooManyRequests))
		r.Use(sessionMiddleware(s.services.Auth))

		r.Route("/auth", func(r chi.Router) {
			credentials := s.loginLimiter.Middleware(s.detector.ExtractClientIP, tooManyRequests)
			r.With(credentials).Post("/register", s.handleRegister)
			r.With(credentials).Post("/login", s.handleLogin)
			r.With(requireSession).Post("/logout", s.handleLogout)
			r.With(requireSession).Get("/me", s.handleMe)
		})

		r.Group(func(r chi.Router) {
			if authRequired {
				r.Use(requireSession)
			}
			r.Get("/dashboard", s.handleDashboard)
			mountResource(r, "/usuario", s.services.Users, func(u core.User) int64 { return u.ID })
			mountResource(r, "/categoria", s.services.Categories, func(c core.Category) int64 { return c.ID })
			mountResource(r, "/tipomovimentacao", s.services.MovementTypes, func(t core.MovementType) int64 { return t.ID })
			mountResource(r, "/movimentacao", s.services.Movements, func(m core.Movement) int64 { return m.ID })
		})
	})

	return r
}

func loginLimit(n int) int {
	if n <= 0 {
		return 10
	}
	return n
}

func tooManyRequests(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Status(http.StatusTooManyRequests).
		Body(Problem{Title: "Too Many Requests", Status: http.StatusTooManyRequests, Detail: "Rate limit exceeded. Please try again later."}).
		Write(w)
}

// Shutdown stops background work and drains the HTTP server once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.loginLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
