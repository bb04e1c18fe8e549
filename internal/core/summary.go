package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RecentLimit is how many movements the dashboard lists.
const RecentLimit = 5

// Dashboard aggregates the movements visible to a caller.
type Dashboard struct {
	TotalCategorias    int             `json:"totalCategorias"`
	TotalMovimentacoes int             `json:"totalMovimentacoes"`
	TotalReceitas      decimal.Decimal `json:"totalReceitas"`
	TotalDespesas      decimal.Decimal `json:"totalDespesas"`
	Saldo              decimal.Decimal `json:"saldo"`
	Recentes           []Movement      `json:"recentes"`
}

// Summarize classifies each movement by the kind of its type and sums both
// classes. Movements whose type was not loaded count toward neither total.
func Summarize(categories []Category, movements []Movement) Dashboard {
	d := Dashboard{
		TotalCategorias:    len(categories),
		TotalMovimentacoes: len(movements),
		TotalReceitas:      decimal.Zero,
		TotalDespesas:      decimal.Zero,
	}

	for _, m := range movements {
		if m.TipoMovimentacao == nil {
			continue
		}
		switch m.TipoMovimentacao.Natureza {
		case KindIncome:
			d.TotalReceitas = d.TotalReceitas.Add(m.Valor)
		case KindExpense:
			d.TotalDespesas = d.TotalDespesas.Add(m.Valor)
		}
	}
	d.Saldo = d.TotalReceitas.Sub(d.TotalDespesas)

	recent := make([]Movement, len(movements))
	copy(recent, movements)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Data.After(recent[j].Data.Time)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	d.Recentes = recent

	return d
}

// FilterByUser keeps the rows owned by usuarioID. Zero keeps everything.
func FilterByUser(categories []Category, movements []Movement, usuarioID int64) ([]Category, []Movement) {
	if usuarioID == 0 {
		return categories, movements
	}
	var cats []Category
	for _, c := range categories {
		if c.UsuarioID == usuarioID {
			cats = append(cats, c)
		}
	}
	var movs []Movement
	for _, m := range movements {
		if m.UsuarioID == usuarioID {
			movs = append(movs, m)
		}
	}
	return cats, movs
}
