package client

import (
	"context"
	"net/http"
	"strconv"

	"gastos/internal/core"
)

// Resource is the proxy for one entity route group, e.g. /api/categoria.
// T is the entity as read, P the write payload.
type Resource[T any, P any] struct {
	c    *Client
	path string
}

func NewResource[T any, P any](c *Client, path string) *Resource[T, P] {
	return &Resource[T, P]{c: c, path: path}
}

func (r *Resource[T, P]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T, P]) GetByID(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodGet, r.itemPath(id), nil, &out)
	return out, err
}

// Create returns the entity as stored, with its assigned id.
func (r *Resource[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var out T
	err := r.c.do(ctx, http.MethodPost, r.path, payload, &out)
	return out, err
}

func (r *Resource[T, P]) Update(ctx context.Context, id int64, payload P) error {
	return r.c.do(ctx, http.MethodPut, r.itemPath(id), payload, nil)
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) Users() *Resource[core.User, core.UserInput] {
	return NewResource[core.User, core.UserInput](c, "/api/usuario")
}

func (c *Client) Categories() *Resource[core.Category, core.CategoryInput] {
	return NewResource[core.Category, core.CategoryInput](c, "/api/categoria")
}

func (c *Client) MovementTypes() *Resource[core.MovementType, core.MovementTypeInput] {
	return NewResource[core.MovementType, core.MovementTypeInput](c, "/api/tipomovimentacao")
}

func (c *Client) Movements() *Resource[core.Movement, core.MovementInput] {
	return NewResource[core.Movement, core.MovementInput](c, "/api/movimentacao")
}
