package backend

import (
	"context"
	"errors"

	"gastos/internal/amqp"
	"gastos/internal/storage"
)

// CleanupFunc releases whatever a backend opened.
type CleanupFunc func() error

// BackendResult holds the opened store and, when configured, the change
// event client.
type BackendResult struct {
	Store   *storage.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the event client as a plain interface value, nil when
// events are disabled.
func (r *BackendResult) Publisher() EventPublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

// EventPublisher matches services.EventPublisher.
type EventPublisher interface {
	Publish(ctx context.Context, event amqp.ChangeEvent) error
}

// Factory opens backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string
	DatabaseURL  string

	// Empty AMQPURL disables change events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// RequireEvents turns an unreachable broker into an error instead of a
	// warning.
	RequireEvents bool
}

type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

var ErrInvalidBackend = errors.New("invalid backend type")

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
