package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gastos/internal/core"
)

// Session is what a successful login returns.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Usuario   core.User `json:"usuario"`
}

type Auth struct {
	c *Client
}

func (c *Client) Auth() *Auth { return &Auth{c: c} }

// Login exchanges credentials for a session and keeps its token on the
// client for later calls.
func (a *Auth) Login(ctx context.Context, email, senha string) (Session, error) {
	var s Session
	body := map[string]string{"email": email, "senha": senha}
	if err := a.c.do(ctx, http.MethodPost, "/api/auth/login", body, &s); err != nil {
		return Session{}, err
	}
	a.c.SetToken(s.Token)
	return s, nil
}

// Logout revokes the current session and forgets the token, even when the
// server call fails.
func (a *Auth) Logout(ctx context.Context) error {
	defer a.c.SetToken("")
	return a.c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Me returns the user behind the current token.
func (a *Auth) Me(ctx context.Context) (core.User, error) {
	var u core.User
	err := a.c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u)
	return u, err
}

func (a *Auth) Register(ctx context.Context, in core.UserInput) (core.User, error) {
	var u core.User
	err := a.c.do(ctx, http.MethodPost, "/api/auth/register", in, &u)
	return u, err
}

// Dashboard fetches the server side aggregate. Zero usuarioID covers every
// user.
func (c *Client) Dashboard(ctx context.Context, usuarioID int64) (core.Dashboard, error) {
	path := "/api/dashboard"
	if usuarioID > 0 {
		path += "?" + url.Values{"usuarioId": {strconv.FormatInt(usuarioID, 10)}}.Encode()
	}
	var d core.Dashboard
	err := c.do(ctx, http.MethodGet, path, nil, &d)
	return d, err
}
