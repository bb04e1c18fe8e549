package services

import (
	"context"
	"fmt"

	"gastos/internal/amqp"
	"gastos/internal/storage"
)

// Payload is a write body that can check itself.
type Payload interface {
	Validate() error
	BodyID() *int64
}

// Ops binds a Resource to the queries of one table.
type Ops[T any, P Payload] struct {
	List   func(ctx context.Context, q *storage.Queries) ([]T, error)
	Get    func(ctx context.Context, q *storage.Queries, id int64) (T, error)
	Insert func(ctx context.Context, q *storage.Queries, in P) (int64, error)
	// Update overwrites every mutable field of row id with in.
	Update func(ctx context.Context, q *storage.Queries, id int64, in P) error
	Delete func(ctx context.Context, q *storage.Queries, id int64) error
}

// Resource provides list, get, create, full-replace update and delete for
// one entity. Missing rows surface as core.ErrNotFound and invalid payloads
// as *core.ValidationError; anything else is a store failure.
type Resource[T any, P Payload] struct {
	store    *storage.Store
	entity   string
	ops      Ops[T, P]
	notifier *Notifier
}

func NewResource[T any, P Payload](store *storage.Store, entity string, ops Ops[T, P], notifier *Notifier) *Resource[T, P] {
	return &Resource[T, P]{store: store, entity: entity, ops: ops, notifier: notifier}
}

func (r *Resource[T, P]) Entity() string {
	return r.entity
}

func (r *Resource[T, P]) List(ctx context.Context) ([]T, error) {
	items, err := r.ops.List(ctx, r.store.Queries())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entity, err)
	}
	return items, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id int64) (T, error) {
	item, err := r.ops.Get(ctx, r.store.Queries(), id)
	if err != nil {
		return item, fmt.Errorf("get %s %d: %w", r.entity, id, err)
	}
	return item, nil
}

// Create inserts the payload and returns the stored row as a subsequent Get
// would, related entities included.
func (r *Resource[T, P]) Create(ctx context.Context, in P) (T, error) {
	var created T
	if err := in.Validate(); err != nil {
		return created, err
	}

	var id int64
	err := r.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		if id, err = r.ops.Insert(ctx, q, in); err != nil {
			return err
		}
		created, err = r.ops.Get(ctx, q, id)
		return err
	})
	if err != nil {
		return created, fmt.Errorf("create %s: %w", r.entity, err)
	}

	r.notifier.Changed(ctx, r.entity, amqp.ActionCreated, id)
	return created, nil
}

func (r *Resource[T, P]) Update(ctx context.Context, id int64, in P) error {
	if err := in.Validate(); err != nil {
		return err
	}

	err := r.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := r.ops.Get(ctx, q, id); err != nil {
			return err
		}
		return r.ops.Update(ctx, q, id, in)
	})
	if err != nil {
		return fmt.Errorf("update %s %d: %w", r.entity, id, err)
	}

	r.notifier.Changed(ctx, r.entity, amqp.ActionUpdated, id)
	return nil
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	err := r.store.InTx(ctx, func(q *storage.Queries) error {
		if _, err := r.ops.Get(ctx, q, id); err != nil {
			return err
		}
		return r.ops.Delete(ctx, q, id)
	})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", r.entity, id, err)
	}

	r.notifier.Changed(ctx, r.entity, amqp.ActionDeleted, id)
	return nil
}
