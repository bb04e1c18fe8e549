package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/storage"
)

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func NewUserService(store *storage.Store, n *Notifier, cost int) *Resource[core.User, core.UserInput] {
	return NewResource(store, amqp.EntityUser, Ops[core.User, core.UserInput]{
		List: func(ctx context.Context, q *storage.Queries) ([]core.User, error) {
			return q.ListUsers(ctx)
		},
		Get: func(ctx context.Context, q *storage.Queries, id int64) (core.User, error) {
			return q.GetUser(ctx, id)
		},
		Insert: func(ctx context.Context, q *storage.Queries, in core.UserInput) (int64, error) {
			u := in.User()
			hash, err := hashPassword(in.Password(), cost)
			if err != nil {
				return 0, err
			}
			u.SenhaHash = hash
			return q.CreateUser(ctx, u)
		},
		Update: func(ctx context.Context, q *storage.Queries, id int64, in core.UserInput) error {
			u := in.User()
			u.ID = id
			hash, err := hashPassword(in.Password(), cost)
			if err != nil {
				return err
			}
			u.SenhaHash = hash
			return q.UpdateUser(ctx, u)
		},
		Delete: func(ctx context.Context, q *storage.Queries, id int64) error {
			return q.DeleteUser(ctx, id)
		},
	}, n)
}

func NewCategoryService(store *storage.Store, n *Notifier) *Resource[core.Category, core.CategoryInput] {
	return NewResource(store, amqp.EntityCategory, Ops[core.Category, core.CategoryInput]{
		List: func(ctx context.Context, q *storage.Queries) ([]core.Category, error) {
			return q.ListCategories(ctx)
		},
		Get: func(ctx context.Context, q *storage.Queries, id int64) (core.Category, error) {
			return q.GetCategory(ctx, id)
		},
		Insert: func(ctx context.Context, q *storage.Queries, in core.CategoryInput) (int64, error) {
			return q.CreateCategory(ctx, in.Category())
		},
		Update: func(ctx context.Context, q *storage.Queries, id int64, in core.CategoryInput) error {
			c := in.Category()
			c.ID = id
			return q.UpdateCategory(ctx, c)
		},
		Delete: func(ctx context.Context, q *storage.Queries, id int64) error {
			return q.DeleteCategory(ctx, id)
		},
	}, n)
}

func NewMovementTypeService(store *storage.Store, n *Notifier) *Resource[core.MovementType, core.MovementTypeInput] {
	return NewResource(store, amqp.EntityMovementType, Ops[core.MovementType, core.MovementTypeInput]{
		List: func(ctx context.Context, q *storage.Queries) ([]core.MovementType, error) {
			return q.ListMovementTypes(ctx)
		},
		Get: func(ctx context.Context, q *storage.Queries, id int64) (core.MovementType, error) {
			return q.GetMovementType(ctx, id)
		},
		Insert: func(ctx context.Context, q *storage.Queries, in core.MovementTypeInput) (int64, error) {
			return q.CreateMovementType(ctx, in.MovementType())
		},
		Update: func(ctx context.Context, q *storage.Queries, id int64, in core.MovementTypeInput) error {
			t := in.MovementType()
			t.ID = id
			return q.UpdateMovementType(ctx, t)
		},
		Delete: func(ctx context.Context, q *storage.Queries, id int64) error {
			return q.DeleteMovementType(ctx, id)
		},
	}, n)
}

func NewMovementService(store *storage.Store, n *Notifier) *Resource[core.Movement, core.MovementInput] {
	return NewResource(store, amqp.EntityMovement, Ops[core.Movement, core.MovementInput]{
		List: func(ctx context.Context, q *storage.Queries) ([]core.Movement, error) {
			return q.ListMovements(ctx)
		},
		Get: func(ctx context.Context, q *storage.Queries, id int64) (core.Movement, error) {
			return q.GetMovement(ctx, id)
		},
		Insert: func(ctx context.Context, q *storage.Queries, in core.MovementInput) (int64, error) {
			return q.CreateMovement(ctx, in.Movement())
		},
		Update: func(ctx context.Context, q *storage.Queries, id int64, in core.MovementInput) error {
			m := in.Movement()
			m.ID = id
			return q.UpdateMovement(ctx, m)
		},
		Delete: func(ctx context.Context, q *storage.Queries, id int64) error {
			return q.DeleteMovement(ctx, id)
		},
	}, n)
}
