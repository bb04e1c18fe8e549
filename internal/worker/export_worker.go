// Package worker mirrors committed movements into the spreadsheet export
// target as change events arrive.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"
)

// MovementSource reads movements with their relations loaded.
// *storage.Queries satisfies it.
type MovementSource interface {
	GetMovement(ctx context.Context, id int64) (core.Movement, error)
	ListMovements(ctx context.Context) ([]core.Movement, error)
}

// EventSource delivers change events until ctx is cancelled.
// *amqp.Client satisfies it.
type EventSource interface {
	Consume(ctx context.Context, handler func(context.Context, amqp.ChangeEvent) error) error
}

type Stats struct {
	Exported int64
	Removed  int64
	Ignored  int64
	Failed   int64
}

type ExportWorker struct {
	movements MovementSource
	exporter  sheets.MovementExporter
	logger    *log.Logger

	exported atomic.Int64
	removed  atomic.Int64
	ignored  atomic.Int64
	failed   atomic.Int64

	// Lifecycle management
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	doneCh  chan struct{}
	runErr  error
}

func NewExportWorker(movements MovementSource, exporter sheets.MovementExporter, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ExportWorker{
		movements: movements,
		exporter:  exporter,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent applies one change event to the export target. Movement events
// write or clear the movement's row. Updates of a category, movement type or
// user rewrite the rows of the movements that reference it, since those rows
// show the related names. Everything else is ignored.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev amqp.ChangeEvent) error {
	logger := w.logger.With(
		log.FieldEntity, ev.Entity,
		log.FieldEntityID, ev.ID,
		"action", string(ev.Action))

	var err error
	switch {
	case ev.Entity == amqp.EntityMovement:
		err = w.exportMovement(ctx, ev)
	case ev.Action == amqp.ActionUpdated && referencedByMovements(ev.Entity):
		err = w.refreshRelated(ctx, ev)
	default:
		w.ignored.Add(1)
		logger.DebugContext(ctx, "Ignoring change event")
		return nil
	}

	if err != nil {
		w.failed.Add(1)
		logger.ErrorContext(ctx, "Failed to export change", log.FieldError, err, log.FieldOperation, log.OpExport)
		return err
	}
	logger.InfoContext(ctx, "Exported change", log.FieldOperation, log.OpExport)
	return nil
}

func (w *ExportWorker) exportMovement(ctx context.Context, ev amqp.ChangeEvent) error {
	if ev.Action == amqp.ActionDeleted {
		return w.remove(ctx, ev.ID)
	}

	m, err := w.movements.GetMovement(ctx, ev.ID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted after the event was published
		return w.remove(ctx, ev.ID)
	}
	if err != nil {
		return fmt.Errorf("load movimentacao %d: %w", ev.ID, err)
	}
	return w.upsert(ctx, m)
}

func (w *ExportWorker) refreshRelated(ctx context.Context, ev amqp.ChangeEvent) error {
	all, err := w.movements.ListMovements(ctx)
	if err != nil {
		return fmt.Errorf("list movimentacoes: %w", err)
	}
	for _, m := range all {
		if !references(m, ev.Entity, ev.ID) {
			continue
		}
		if err := w.upsert(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Resync writes every stored movement to the export target and returns how
// many rows were written. Used at startup to catch up on missed events.
func (w *ExportWorker) Resync(ctx context.Context) (int, error) {
	all, err := w.movements.ListMovements(ctx)
	if err != nil {
		return 0, fmt.Errorf("list movimentacoes: %w", err)
	}
	for i, m := range all {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := w.upsert(ctx, m); err != nil {
			return i, err
		}
	}
	w.logger.InfoContext(ctx, "Resync completed", "rows", len(all))
	return len(all), nil
}

func (w *ExportWorker) upsert(ctx context.Context, m core.Movement) error {
	if err := w.exporter.Upsert(ctx, sheets.RowFromMovement(m)); err != nil {
		return fmt.Errorf("export movimentacao %d: %w", m.ID, err)
	}
	w.exported.Add(1)
	return nil
}

func (w *ExportWorker) remove(ctx context.Context, id int64) error {
	if err := w.exporter.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove movimentacao %d: %w", id, err)
	}
	w.removed.Add(1)
	return nil
}

func referencedByMovements(entity string) bool {
	switch entity {
	case amqp.EntityCategory, amqp.EntityMovementType, amqp.EntityUser:
		return true
	}
	return false
}

func references(m core.Movement, entity string, id int64) bool {
	switch entity {
	case amqp.EntityCategory:
		return m.CategoriaID == id
	case amqp.EntityMovementType:
		return m.TipoMovimentacaoID == id
	case amqp.EntityUser:
		return m.UsuarioID == id
	}
	return false
}

// Start consumes events from source in the background. Returns an error if
// already running.
func (w *ExportWorker) Start(ctx context.Context, source EventSource) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("export worker is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.running = true
	w.cancel = cancel
	w.doneCh = make(chan struct{})
	w.runErr = nil

	go func(done chan struct{}) {
		defer close(done)
		err := source.Consume(runCtx, w.HandleEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(runCtx, "Event consumption stopped", log.FieldError, err)
		}
		w.mu.Lock()
		w.runErr = err
		w.mu.Unlock()
	}(w.doneCh)

	w.logger.InfoContext(ctx, "Export worker started", log.FieldOperation, log.OpStartup)
	return nil
}

// Stop cancels consumption and waits for the consumer to return or ctx to
// expire.
func (w *ExportWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	done := w.doneCh
	w.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for export worker to stop: %w", ctx.Err())
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	w.logger.InfoContext(ctx, "Export worker stopped", log.FieldOperation, log.OpShutdown)
	return nil
}

// Done is closed when consumption ends, either through Stop or because the
// source gave up.
func (w *ExportWorker) Done() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doneCh
}

// Err returns what the event source returned once Done is closed.
func (w *ExportWorker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runErr
}

func (w *ExportWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ExportWorker) Stats() Stats {
	return Stats{
		Exported: w.exported.Load(),
		Removed:  w.removed.Load(),
		Ignored:  w.ignored.Load(),
		Failed:   w.failed.Load(),
	}
}
