// Package services implements the resource operations of the finance tracker
// on top of the store. Every mutation runs in one transaction and, once
// committed, is announced to listeners and to the optional event publisher.
package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/storage"
)

// EventPublisher receives change events after commit.
type EventPublisher interface {
	Publish(ctx context.Context, event amqp.ChangeEvent) error
}

type Options struct {
	Events        EventPublisher
	SessionSecret []byte
	SessionTTL    time.Duration
	DashboardTTL  time.Duration
	BcryptCost    int
	Now           func() time.Time
}

type Services struct {
	Users         *Resource[core.User, core.UserInput]
	Categories    *Resource[core.Category, core.CategoryInput]
	MovementTypes *Resource[core.MovementType, core.MovementTypeInput]
	Movements     *Resource[core.Movement, core.MovementInput]
	Dashboard     *DashboardService
	Auth          *AuthService
}

func New(store *storage.Store, opts Options) *Services {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 24 * time.Hour
	}

	dashboard := NewDashboardService(store, opts.DashboardTTL)
	notifier := &Notifier{events: opts.Events}
	notifier.OnChange(dashboard.Invalidate)

	users := NewUserService(store, notifier, opts.BcryptCost)
	return &Services{
		Users:         users,
		Categories:    NewCategoryService(store, notifier),
		MovementTypes: NewMovementTypeService(store, notifier),
		Movements:     NewMovementService(store, notifier),
		Dashboard:     dashboard,
		Auth:          NewAuthService(store, users, opts.SessionSecret, opts.SessionTTL, opts.Now),
	}
}

// Notifier fans a committed change out to in-process listeners and the
// event publisher. Publish failures are logged and never surface to callers.
type Notifier struct {
	events    EventPublisher
	listeners []func()
}

func (n *Notifier) OnChange(fn func()) {
	n.listeners = append(n.listeners, fn)
}

func (n *Notifier) Changed(ctx context.Context, entity string, action amqp.Action, id int64) {
	if n == nil {
		return
	}
	for _, fn := range n.listeners {
		fn()
	}
	if n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, amqp.NewChangeEvent(entity, action, id)); err != nil {
		fields := log.NewFields().WithEntity(entity, id).WithOperation(log.OpPublish).WithError(err)
		log.FromContext(ctx).WithComponent(log.ComponentService).WarnContext(ctx, "Failed to publish change event", fields.ToSlice()...)
	}
}
