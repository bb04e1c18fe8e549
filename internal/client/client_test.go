package client_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gastos/internal/client"
	"gastos/internal/core"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
)

// newAPI runs the real API over a temporary sqlite database.
func newAPI(t *testing.T, authRequired bool) *client.Client {
	t.Helper()
	store, err := storage.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "gastos.db"))
	require.NoError(t, err)

	svc := services.New(store, services.Options{
		SessionSecret: []byte("0123456789abcdef0123456789abcdef"),
		SessionTTL:    time.Hour,
		BcryptCost:    bcrypt.MinCost,
	})
	server := apphttp.NewServer(":0", apphttp.Deps{
		Services:           svc,
		Store:              store,
		Logger:             log.New(log.Config{Output: io.Discard}),
		RateLimitPerMinute: 1000,
		AuthRequired:       authRequired,
	})
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = server.Shutdown(context.Background())
		store.Close()
	})
	return client.New(ts.URL+"/", client.WithHTTPClient(ts.Client()))
}

func TestResourceRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newAPI(t, false)

	users, err := c.Users().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	u, err := c.Users().Create(ctx, core.UserInput{
		Nome: core.Ptr("Ana"), Email: core.Ptr("ana@example.com"), Senha: core.Ptr("segredo123"),
	})
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	cat, err := c.Categories().Create(ctx, core.CategoryInput{Nome: core.Ptr("Moradia"), UsuarioID: &u.ID})
	require.NoError(t, err)
	tipo, err := c.MovementTypes().Create(ctx, core.MovementTypeInput{Nome: core.Ptr("Despesa")})
	require.NoError(t, err)
	assert.Equal(t, core.KindExpense, tipo.Natureza)

	valor := decimal.RequireFromString("1500.75")
	data := core.NewDate(2024, 3, 10)
	mov, err := c.Movements().Create(ctx, core.MovementInput{
		Descricao:          core.Ptr("Aluguel"),
		Valor:              &valor,
		Data:               &data,
		Fixo:               core.Ptr(true),
		TipoMovimentacaoID: &tipo.ID,
		CategoriaID:        &cat.ID,
		UsuarioID:          &u.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, mov.Categoria)
	assert.Equal(t, "Moradia", mov.Categoria.Nome)
	assert.True(t, mov.Valor.Equal(valor))

	require.NoError(t, c.Movements().Update(ctx, mov.ID, core.MovementInput{
		ID:                 &mov.ID,
		Descricao:          core.Ptr("Aluguel março"),
		Valor:              &valor,
		Data:               &data,
		TipoMovimentacaoID: &tipo.ID,
		CategoriaID:        &cat.ID,
		UsuarioID:          &u.ID,
	}))
	got, err := c.Movements().GetByID(ctx, mov.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aluguel março", got.Descricao)
	assert.False(t, got.Fixo)

	require.NoError(t, c.Movements().Delete(ctx, mov.ID))
	_, err = c.Movements().GetByID(ctx, mov.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, c.Movements().Delete(ctx, mov.ID), client.ErrNotFound)
}

func TestValidationErrorCarriesProblem(t *testing.T) {
	c := newAPI(t, false)

	_, err := c.Categories().Create(context.Background(), core.CategoryInput{})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.NotNil(t, apiErr.Problem)
	assert.Contains(t, apiErr.Problem.Errors, "nome")
	assert.Contains(t, apiErr.Problem.Errors, "usuarioId")
	assert.NotErrorIs(t, err, client.ErrNotFound)
}

func TestAuthFlowAndDashboard(t *testing.T) {
	ctx := context.Background()
	c := newAPI(t, true)

	_, err := c.Users().GetAll(ctx)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	u, err := c.Auth().Register(ctx, core.UserInput{
		Nome: core.Ptr("Bia"), Email: core.Ptr("bia@example.com"), Senha: core.Ptr("segredo123"),
	})
	require.NoError(t, err)

	_, err = c.Auth().Login(ctx, "bia@example.com", "errada")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Empty(t, c.Token())

	session, err := c.Auth().Login(ctx, "bia@example.com", "segredo123")
	require.NoError(t, err)
	assert.Equal(t, session.Token, c.Token())
	assert.Equal(t, u.ID, session.Usuario.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	me, err := c.Auth().Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bia@example.com", me.Email)

	d, err := c.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, d.TotalMovimentacoes)
	assert.True(t, d.Saldo.IsZero())

	require.NoError(t, c.Auth().Logout(ctx))
	assert.Empty(t, c.Token())

	c.SetToken(session.Token)
	_, err = c.Auth().Me(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestNonJSONErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := client.New(ts.URL, client.WithToken("abc"))
	_, err := c.Categories().GetAll(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Nil(t, apiErr.Problem)
	assert.Contains(t, string(apiErr.Body), "upstream down")
	assert.Contains(t, apiErr.Error(), "GET /api/categoria: 502")
}
