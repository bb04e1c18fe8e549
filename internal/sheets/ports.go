// Package sheets mirrors movements into a spreadsheet, one row per movement.
package sheets

import (
	"context"
	"strconv"

	"gastos/internal/core"
)

// Header is the first row of the export sheet.
var Header = []string{"ID", "Data", "Descricao", "Valor", "Natureza", "Categoria", "Usuario", "Fixo"}

// Row is a movement flattened to spreadsheet cells.
type Row struct {
	ID        int64
	Data      string
	Descricao string
	Valor     string
	Natureza  string
	Categoria string
	Usuario   string
	Fixo      bool
}

// RowFromMovement flattens m. Relations that were not loaded leave their
// cells empty.
func RowFromMovement(m core.Movement) Row {
	r := Row{
		ID:        m.ID,
		Data:      m.Data.UTC().Format("2006-01-02"),
		Descricao: m.Descricao,
		Valor:     m.Valor.StringFixed(2),
		Fixo:      m.Fixo,
	}
	if m.TipoMovimentacao != nil {
		r.Natureza = string(m.TipoMovimentacao.Natureza)
	}
	if m.Categoria != nil {
		r.Categoria = m.Categoria.Nome
	}
	if m.Usuario != nil {
		r.Usuario = m.Usuario.Nome
	}
	return r
}

// Values returns the cells in Header order.
func (r Row) Values() []any {
	return []any{
		strconv.FormatInt(r.ID, 10),
		r.Data,
		r.Descricao,
		r.Valor,
		r.Natureza,
		r.Categoria,
		r.Usuario,
		strconv.FormatBool(r.Fixo),
	}
}

// MovementExporter is implemented by export targets. Remove of an unknown id
// is not an error.
type MovementExporter interface {
	Upsert(ctx context.Context, row Row) error
	Remove(ctx context.Context, id int64) error
}
