package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gastos/internal/core"
)

type StoreTestSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := OpenSQLite(s.ctx, filepath.Join(s.T().TempDir(), "gastos.db"))
	require.NoError(s.T(), err, "failed to open test database")
	s.store = store
}

func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *StoreTestSuite) seed() (core.User, core.Category, core.MovementType) {
	q := s.store.Queries()
	uid, err := q.CreateUser(s.ctx, core.User{Nome: "Ana", Email: "ana@example.com", SenhaHash: "hash"})
	require.NoError(s.T(), err)
	cid, err := q.CreateCategory(s.ctx, core.Category{Nome: "Casa", UsuarioID: uid})
	require.NoError(s.T(), err)
	tid, err := q.CreateMovementType(s.ctx, core.MovementType{Nome: "Despesa", Natureza: core.KindExpense})
	require.NoError(s.T(), err)

	return core.User{ID: uid, Nome: "Ana", Email: "ana@example.com"},
		core.Category{ID: cid, Nome: "Casa", UsuarioID: uid},
		core.MovementType{ID: tid, Nome: "Despesa", Natureza: core.KindExpense}
}

func (s *StoreTestSuite) TestUserRoundTrip() {
	q := s.store.Queries()
	id, err := q.CreateUser(s.ctx, core.User{Nome: "Ana", Email: "ana@example.com", SenhaHash: "hash"})
	require.NoError(s.T(), err)
	assert.Positive(s.T(), id)

	u, err := q.GetUser(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Ana", u.Nome)
	assert.Equal(s.T(), "hash", u.SenhaHash)

	byEmail, err := q.GetUserByEmail(s.ctx, "ANA@example.com")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), id, byEmail.ID)

	_, err = q.CreateUser(s.ctx, core.User{Nome: "Outra", Email: "Ana@Example.com", SenhaHash: "x"})
	assert.ErrorIs(s.T(), err, core.ErrEmailTaken)
}

func (s *StoreTestSuite) TestGetMissingReturnsNotFound() {
	q := s.store.Queries()
	_, err := q.GetUser(s.ctx, 999)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	_, err = q.GetCategory(s.ctx, 999)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	_, err = q.GetMovementType(s.ctx, 999)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	_, err = q.GetMovement(s.ctx, 999)
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
	_, err = q.GetSession(s.ctx, "missing")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *StoreTestSuite) TestMovementJoins() {
	user, cat, tipo := s.seed()
	q := s.store.Queries()

	when := time.Date(2024, 2, 10, 15, 0, 0, 0, time.UTC)
	id, err := q.CreateMovement(s.ctx, core.Movement{
		Descricao:          "Aluguel",
		Valor:              decimal.RequireFromString("1500.75"),
		Data:               core.Date{Time: when},
		Fixo:               true,
		TipoMovimentacaoID: tipo.ID,
		CategoriaID:        cat.ID,
		UsuarioID:          user.ID,
	})
	require.NoError(s.T(), err)

	m, err := q.GetMovement(s.ctx, id)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Aluguel", m.Descricao)
	assert.True(s.T(), m.Valor.Equal(decimal.RequireFromString("1500.75")))
	assert.True(s.T(), m.Data.Equal(when))
	assert.True(s.T(), m.Fixo)
	require.NotNil(s.T(), m.TipoMovimentacao)
	assert.Equal(s.T(), core.KindExpense, m.TipoMovimentacao.Natureza)
	require.NotNil(s.T(), m.Categoria)
	assert.Equal(s.T(), "Casa", m.Categoria.Nome)
	require.NotNil(s.T(), m.Usuario)
	assert.Equal(s.T(), "ana@example.com", m.Usuario.Email)

	list, err := q.ListMovements(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), list, 1)
}

func (s *StoreTestSuite) TestForeignKeysAreEnforced() {
	q := s.store.Queries()
	_, err := q.CreateCategory(s.ctx, core.Category{Nome: "Orfa", UsuarioID: 4242})
	assert.Error(s.T(), err)

	user, cat, _ := s.seed()
	err = q.DeleteUser(s.ctx, user.ID)
	assert.Error(s.T(), err, "user still referenced by category %d", cat.ID)
}

func (s *StoreTestSuite) TestInTxRollsBack() {
	boom := errors.New("boom")
	err := s.store.InTx(s.ctx, func(q *Queries) error {
		if _, err := q.CreateMovementType(s.ctx, core.MovementType{Nome: "Receita", Natureza: core.KindIncome}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(s.T(), err, boom)

	types, err := s.store.Queries().ListMovementTypes(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), types)
}

func (s *StoreTestSuite) TestSessions() {
	user, _, _ := s.seed()
	q := s.store.Queries()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(s.T(), q.CreateSession(s.ctx, core.Session{ID: "live", UsuarioID: user.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(s.T(), q.CreateSession(s.ctx, core.Session{ID: "old", UsuarioID: user.ID, CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))

	got, err := q.GetSession(s.ctx, "live")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, got.UsuarioID)
	assert.True(s.T(), got.ExpiresAt.Equal(now.Add(time.Hour)))

	n, err := q.DeleteExpiredSessions(s.ctx, now)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), n)

	require.NoError(s.T(), q.DeleteSession(s.ctx, "live"))
	_, err = q.GetSession(s.ctx, "live")
	assert.ErrorIs(s.T(), err, core.ErrNotFound)
}

func (s *StoreTestSuite) TestReopenSkipsAppliedMigrations() {
	path := filepath.Join(s.T().TempDir(), "again.db")
	first, err := OpenSQLite(s.ctx, path)
	require.NoError(s.T(), err)
	first.Close()

	second, err := OpenSQLite(s.ctx, path)
	require.NoError(s.T(), err)
	defer second.Close()
	assert.NoError(s.T(), second.Ping(s.ctx))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func TestRebind(t *testing.T) {
	pg := New(nil, DialectPostgres)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := New(nil, DialectSQLite)
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
