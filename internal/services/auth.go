package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/storage"
)

const tokenIssuer = "gastos"

// AuthService issues signed session tokens backed by rows in the sessions
// table, so a token stops working as soon as its session is deleted.
type AuthService struct {
	store  *storage.Store
	users  *Resource[core.User, core.UserInput]
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(store *storage.Store, users *Resource[core.User, core.UserInput], secret []byte, ttl time.Duration, now func() time.Time) *AuthService {
	return &AuthService{store: store, users: users, secret: secret, ttl: ttl, now: now}
}

// Login is the result of a successful authentication.
type Login struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Usuario   core.User `json:"usuario"`
}

func (s *AuthService) Register(ctx context.Context, in core.UserInput) (core.User, error) {
	if err := in.Validate(); err != nil {
		return core.User{}, err
	}
	if _, err := s.store.Queries().GetUserByEmail(ctx, strings.TrimSpace(*in.Email)); err == nil {
		return core.User{}, core.ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("lookup email: %w", err)
	}
	return s.users.Create(ctx, in)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (Login, error) {
	user, err := s.store.Queries().GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, core.ErrNotFound) {
		return Login{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Login{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(password)); err != nil {
		return Login{}, core.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := core.Session{
		ID:        uuid.NewString(),
		UsuarioID: user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Queries().CreateSession(ctx, session); err != nil {
		return Login{}, fmt.Errorf("create session: %w", err)
	}

	token, err := s.sign(session)
	if err != nil {
		return Login{}, err
	}

	log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "User logged in",
		log.FieldUserID, user.ID, log.FieldSessionID, session.ID, log.FieldOperation, log.OpLogin)
	return Login{Token: token, ExpiresAt: session.ExpiresAt, Usuario: user}, nil
}

func (s *AuthService) sign(session core.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UsuarioID, 10),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its live session and user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.Session, core.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return core.Session{}, core.User{}, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	q := s.store.Queries()
	session, err := q.GetSession(ctx, claims.ID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, core.User{}, fmt.Errorf("%w: session revoked", core.ErrUnauthorized)
	}
	if err != nil {
		return core.Session{}, core.User{}, fmt.Errorf("load session: %w", err)
	}
	if session.Expired(s.now()) || strconv.FormatInt(session.UsuarioID, 10) != claims.Subject {
		return core.Session{}, core.User{}, fmt.Errorf("%w: session expired", core.ErrUnauthorized)
	}

	user, err := q.GetUser(ctx, session.UsuarioID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, core.User{}, fmt.Errorf("%w: user removed", core.ErrUnauthorized)
	}
	if err != nil {
		return core.Session{}, core.User{}, fmt.Errorf("load user: %w", err)
	}
	return session, user, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Queries().DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.store.Queries().DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// RunCleanup purges expired sessions every interval until ctx is done.
func (s *AuthService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.FromContext(ctx).WithComponent(log.ComponentAuth).ErrorContext(ctx, "Session cleanup failed", log.FieldError, err)
				continue
			}
			if n > 0 {
				log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "Expired sessions removed", "count", n)
			}
		}
	}
}
