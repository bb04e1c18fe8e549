package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestJSONResponseBuilder_Created(t *testing.T) {
	w := httptest.NewRecorder()

	Created("/api/categoria/7", map[string]int{"id": 7}).Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/categoria/7", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"id":7}`, w.Body.String())
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	for _, b := range []*JSONResponseBuilder{NoContent(), NotFound()} {
		w := httptest.NewRecorder()
		b.Write(w)
		assert.Empty(t, w.Body.String())
		assert.Empty(t, w.Header().Get("Content-Type"))
	}
}

func TestErrorResponse(t *testing.T) {
	verr := core.NewValidationError()
	verr.Add("nome", "The nome field is required.")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", verr, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get categoria 3: %w", core.ErrNotFound), http.StatusNotFound},
		{"credentials", core.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", fmt.Errorf("%w: session revoked", core.ErrUnauthorized), http.StatusUnauthorized},
		{"email taken", fmt.Errorf("create usuario: %w", core.ErrEmailTaken), http.StatusConflict},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorResponse(tt.err).Write(w)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestValidationProblemBody(t *testing.T) {
	verr := core.NewValidationError()
	verr.Add("descricao", "The descricao field is required.")

	w := httptest.NewRecorder()
	ErrorResponse(verr).Write(w)

	var p Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "One or more validation errors occurred.", p.Title)
	assert.Equal(t, 400, p.Status)
	assert.Equal(t, []string{"The descricao field is required."}, p.Errors["descricao"])
}

func TestInternalServerErrorDetail(t *testing.T) {
	root := errors.New("FOREIGN KEY constraint failed")
	err := fmt.Errorf("update categoria 1: %w", root)

	w := httptest.NewRecorder()
	ErrorResponse(err).Write(w)

	var p Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 500, p.Status)
	assert.Equal(t, "update categoria 1: FOREIGN KEY constraint failed | Detalhes: FOREIGN KEY constraint failed", p.Detail)
}
