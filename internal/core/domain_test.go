package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromName(t *testing.T) {
	assert.Equal(t, KindIncome, KindFromName("Receita"))
	assert.Equal(t, KindIncome, KindFromName(" RECEITA "))
	assert.Equal(t, KindExpense, KindFromName("income"))
	assert.Equal(t, KindExpense, KindFromName("Receitas"))
	assert.Equal(t, KindExpense, KindFromName("Despesa"))
	assert.Equal(t, KindExpense, KindFromName("Salario"))
	assert.Equal(t, KindExpense, KindFromName(""))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Despesa")
	require.NoError(t, err)
	assert.Equal(t, KindExpense, k)

	k, err = ParseKind("income")
	require.NoError(t, err)
	assert.Equal(t, KindIncome, k)

	_, err = ParseKind("transfer")
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:30:00", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-03-01T10:30:00-03:00", time.Date(2024, 3, 1, 13, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s: got %s", tc.in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	_, err := ParseDate("01/03/2024")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-05-10T08:00:00-03:00"`), &d))
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-05-10T11:00:00Z"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`12`), &d))
}

func TestUserInputValidate(t *testing.T) {
	err := UserInput{}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "nome")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "senha")

	err = UserInput{Nome: Ptr("Ana"), Email: Ptr("not-an-email"), Senha: Ptr("x")}.Validate()
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"The email field is not a valid e-mail address."}, verr.Fields["email"])

	in := UserInput{Nome: Ptr("Ana"), Email: Ptr("ana@example.com"), SenhaHash: Ptr("segredo")}
	assert.NoError(t, in.Validate())
	assert.Equal(t, "segredo", in.Password())
}

func TestMovementTypeInput(t *testing.T) {
	assert.NoError(t, MovementTypeInput{Nome: Ptr("Receita"), Natureza: Ptr("receita")}.Validate())
	assert.NoError(t, MovementTypeInput{Nome: Ptr("Salario"), Natureza: Ptr("despesa")}.Validate())
	assert.Error(t, MovementTypeInput{Nome: Ptr("Salario"), Natureza: Ptr("loan")}.Validate())
	assert.Error(t, MovementTypeInput{Nome: Ptr("  ")}.Validate())

	assert.Equal(t, KindIncome, MovementTypeInput{Nome: Ptr("Receita")}.MovementType().Natureza)
	assert.Equal(t, KindExpense, MovementTypeInput{Nome: Ptr("Aluguel")}.MovementType().Natureza)
	assert.Equal(t, KindExpense, MovementTypeInput{Nome: Ptr("Income")}.MovementType().Natureza)
}

func TestMovementTypeNaturezaMustAgreeWithName(t *testing.T) {
	tests := []struct {
		nome, natureza string
	}{
		{"Receita", "despesa"},
		{"Salario", "receita"},
		{"Income", "income"},
	}
	for _, tt := range tests {
		err := MovementTypeInput{Nome: Ptr(tt.nome), Natureza: Ptr(tt.natureza)}.Validate()
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "%s/%s", tt.nome, tt.natureza)
		assert.Contains(t, verr.Fields, "natureza")
	}
}

func TestMovementInput(t *testing.T) {
	err := MovementInput{Descricao: Ptr("Mercado")}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	for _, f := range []string{"valor", "data", "tipoMovimentacaoId", "categoriaId", "usuarioId"} {
		assert.Contains(t, verr.Fields, f)
	}
	assert.NotContains(t, verr.Fields, "fixo")

	var in MovementInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"descricao": "Mercado",
		"valor": 120.5,
		"data": "2024-01-15",
		"tipoMovimentacaoId": 1,
		"categoriaId": 2,
		"usuarioId": 3
	}`), &in))
	require.NoError(t, in.Validate())

	m := in.Movement()
	assert.False(t, m.Fixo)
	assert.True(t, m.Valor.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, int64(2), m.CategoriaID)
	assert.Equal(t, time.UTC, m.Data.Location())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	assert.True(t, Session{ExpiresAt: now}.Expired(now))
}
