package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/sheets"
	"gastos/internal/sheets/memory"
)

type fakeMovements struct {
	items   map[int64]core.Movement
	listErr error
}

func (f *fakeMovements) GetMovement(_ context.Context, id int64) (core.Movement, error) {
	m, ok := f.items[id]
	if !ok {
		return core.Movement{}, core.ErrNotFound
	}
	return m, nil
}

func (f *fakeMovements) ListMovements(context.Context) ([]core.Movement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]core.Movement, 0, len(f.items))
	for id := int64(1); id <= int64(len(f.items))+10; id++ {
		if m, ok := f.items[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

type failingExporter struct{}

func (failingExporter) Upsert(context.Context, sheets.Row) error { return errors.New("quota exceeded") }
func (failingExporter) Remove(context.Context, int64) error      { return errors.New("quota exceeded") }

// chanSource feeds events from a channel the way amqp.Client.Consume does.
type chanSource struct {
	events  chan amqp.ChangeEvent
	handled chan error
}

func (s *chanSource) Consume(ctx context.Context, handler func(context.Context, amqp.ChangeEvent) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.handled <- handler(ctx, ev)
		}
	}
}

func movement(id, categoriaID int64, descricao string) core.Movement {
	return core.Movement{
		ID:                 id,
		Descricao:          descricao,
		Valor:              decimal.NewFromInt(100),
		Data:               core.NewDate(2024, 3, 1),
		TipoMovimentacaoID: 1,
		CategoriaID:        categoriaID,
		UsuarioID:          1,
		Categoria:          &core.Category{ID: categoriaID, Nome: "Cat"},
	}
}

func newWorker(src MovementSource, exp sheets.MovementExporter) *ExportWorker {
	return NewExportWorker(src, exp, log.New(log.Config{Output: io.Discard}))
}

func TestHandleMovementEvents(t *testing.T) {
	ctx := context.Background()
	src := &fakeMovements{items: map[int64]core.Movement{1: movement(1, 1, "Mercado")}}
	exp := memory.New()
	w := newWorker(src, exp)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionCreated, 1)))
	row, ok := exp.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Mercado", row.Descricao)
	assert.Equal(t, "100.00", row.Valor)

	src.items[1] = movement(1, 1, "Feira")
	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionUpdated, 1)))
	row, _ = exp.Get(1)
	assert.Equal(t, "Feira", row.Descricao)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionDeleted, 1)))
	_, ok = exp.Get(1)
	assert.False(t, ok)

	assert.Equal(t, Stats{Exported: 2, Removed: 1}, w.Stats())
}

func TestCreatedEventForVanishedMovementRemovesRow(t *testing.T) {
	ctx := context.Background()
	exp := memory.New()
	require.NoError(t, exp.Upsert(ctx, sheets.Row{ID: 4}))
	w := newWorker(&fakeMovements{items: map[int64]core.Movement{}}, exp)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionUpdated, 4)))
	assert.Empty(t, exp.Rows())
}

func TestCategoryUpdateRewritesReferencingRows(t *testing.T) {
	ctx := context.Background()
	src := &fakeMovements{items: map[int64]core.Movement{
		1: movement(1, 1, "a"),
		2: movement(2, 2, "b"),
		3: movement(3, 1, "c"),
	}}
	exp := memory.New()
	w := newWorker(src, exp)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityCategory, amqp.ActionUpdated, 1)))
	rows := exp.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(3), rows[1].ID)
}

func TestOtherEventsAreIgnored(t *testing.T) {
	ctx := context.Background()
	exp := memory.New()
	w := newWorker(&fakeMovements{items: map[int64]core.Movement{}}, exp)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityCategory, amqp.ActionCreated, 1)))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewChangeEvent(amqp.EntityUser, amqp.ActionDeleted, 1)))
	require.NoError(t, w.HandleEvent(ctx, amqp.ChangeEvent{Entity: "sessao", Action: amqp.ActionUpdated, ID: 1}))

	assert.Empty(t, exp.Rows())
	assert.Equal(t, int64(3), w.Stats().Ignored)
}

func TestExportFailureIsReturned(t *testing.T) {
	src := &fakeMovements{items: map[int64]core.Movement{1: movement(1, 1, "a")}}
	w := newWorker(src, failingExporter{})

	err := w.HandleEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionCreated, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, int64(1), w.Stats().Failed)

	src.listErr = errors.New("db down")
	err = w.HandleEvent(context.Background(), amqp.NewChangeEvent(amqp.EntityMovementType, amqp.ActionUpdated, 1))
	assert.ErrorContains(t, err, "db down")
}

func TestResync(t *testing.T) {
	src := &fakeMovements{items: map[int64]core.Movement{
		1: movement(1, 1, "a"),
		2: movement(2, 1, "b"),
	}}
	exp := memory.New()
	w := newWorker(src, exp)

	n, err := w.Resync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, exp.Rows(), 2)
}

func TestStartStop(t *testing.T) {
	src := &fakeMovements{items: map[int64]core.Movement{1: movement(1, 1, "a")}}
	exp := memory.New()
	w := newWorker(src, exp)
	events := &chanSource{events: make(chan amqp.ChangeEvent), handled: make(chan error, 1)}

	require.NoError(t, w.Start(context.Background(), events))
	assert.True(t, w.IsRunning())
	assert.Error(t, w.Start(context.Background(), events))

	events.events <- amqp.NewChangeEvent(amqp.EntityMovement, amqp.ActionCreated, 1)
	select {
	case err := <-events.handled:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not handled")
	}
	_, ok := exp.Get(1)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.False(t, w.IsRunning())
	assert.ErrorIs(t, w.Err(), context.Canceled)
	require.NoError(t, w.Stop(ctx))
}
