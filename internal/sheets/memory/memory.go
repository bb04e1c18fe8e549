// Package memory is an in-process export target used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gastos/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	rows    map[int64]sheets.Row
	upserts int
	removes int
}

var _ sheets.MovementExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{rows: map[int64]sheets.Row{}}
}

func (e *Exporter) Upsert(_ context.Context, row sheets.Row) error {
	if row.ID <= 0 {
		return fmt.Errorf("row id must be positive, got %d", row.ID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows[row.ID] = row
	e.upserts++
	return nil
}

func (e *Exporter) Remove(_ context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[id]; ok {
		delete(e.rows, id)
		e.removes++
	}
	return nil
}

// Rows returns a copy of the exported rows ordered by id.
func (e *Exporter) Rows() []sheets.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]sheets.Row, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the row for id, if exported.
func (e *Exporter) Get(id int64) (sheets.Row, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rows[id]
	return r, ok
}

// Counts reports how many upserts and effective removals were applied.
func (e *Exporter) Counts() (upserts, removes int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.upserts, e.removes
}
