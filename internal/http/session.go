package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/log"
)

type sessionKey struct{}

// Auth is the caller identity resolved from a bearer token.
type Auth struct {
	Session core.Session
	User    core.User
}

// Authenticator resolves a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (core.Session, core.User, error)
}

// AuthFromContext returns the identity attached by the session middleware.
func AuthFromContext(ctx context.Context) (Auth, bool) {
	a, ok := ctx.Value(sessionKey{}).(Auth)
	return a, ok
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// sessionMiddleware attaches the caller identity when a valid token is
// presented. Requests without one pass through untouched.
func sessionMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, core.ErrUnauthorized) {
					writeError(w, r, log.OpLogin, err)
					return
				}
				log.FromContext(r.Context()).WithComponent(log.ComponentAuth).DebugContext(r.Context(), "Ignoring invalid session token",
					log.FieldError, err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, Auth{Session: session, User: user})
			ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, user.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireSession rejects requests that carry no valid session.
func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AuthFromContext(r.Context()); !ok {
			Unauthorized("A valid session token is required.").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
