package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func movement(id int64, valor int64, day int, tipo *MovementType) Movement {
	m := Movement{ID: id, Valor: decimal.NewFromInt(valor), Data: NewDate(2024, 1, day), UsuarioID: 1}
	if tipo != nil {
		m.TipoMovimentacaoID = tipo.ID
		m.TipoMovimentacao = tipo
	}
	return m
}

func TestSummarizeBalance(t *testing.T) {
	receita := &MovementType{ID: 1, Nome: "Receita", Natureza: KindIncome}
	despesa := &MovementType{ID: 2, Nome: "Despesa", Natureza: KindExpense}

	d := Summarize([]Category{{ID: 1}}, []Movement{
		movement(1, 1000, 1, receita),
		movement(2, 300, 2, despesa),
	})

	assert.Equal(t, 1, d.TotalCategorias)
	assert.Equal(t, 2, d.TotalMovimentacoes)
	assert.True(t, d.TotalReceitas.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.TotalDespesas.Equal(decimal.NewFromInt(300)))
	assert.True(t, d.Saldo.Equal(decimal.NewFromInt(700)))
}

func TestSummarizeSkipsUnknownTypes(t *testing.T) {
	d := Summarize(nil, []Movement{movement(1, 50, 1, nil)})
	assert.True(t, d.TotalReceitas.IsZero())
	assert.True(t, d.TotalDespesas.IsZero())
	assert.Equal(t, 1, d.TotalMovimentacoes)
	assert.Len(t, d.Recentes, 1)
}

func TestSummarizeRecent(t *testing.T) {
	despesa := &MovementType{ID: 2, Nome: "Despesa", Natureza: KindExpense}
	var movs []Movement
	for i := 1; i <= 8; i++ {
		movs = append(movs, movement(int64(i), 10, i, despesa))
	}

	d := Summarize(nil, movs)
	assert.Len(t, d.Recentes, RecentLimit)
	ids := make([]int64, 0, len(d.Recentes))
	for _, m := range d.Recentes {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []int64{8, 7, 6, 5, 4}, ids)
	assert.Equal(t, int64(1), movs[0].ID, "input order is untouched")
}

func TestSummarizeEmpty(t *testing.T) {
	d := Summarize(nil, nil)
	assert.True(t, d.Saldo.IsZero())
	assert.Empty(t, d.Recentes)
}

func TestFilterByUser(t *testing.T) {
	cats := []Category{{ID: 1, UsuarioID: 1}, {ID: 2, UsuarioID: 2}}
	movs := []Movement{{ID: 1, UsuarioID: 2}, {ID: 2, UsuarioID: 1}}

	c, m := FilterByUser(cats, movs, 2)
	assert.Equal(t, []Category{{ID: 2, UsuarioID: 2}}, c)
	assert.Equal(t, []Movement{{ID: 1, UsuarioID: 2}}, m)

	c, m = FilterByUser(cats, movs, 0)
	assert.Len(t, c, 2)
	assert.Len(t, m, 2)
}
