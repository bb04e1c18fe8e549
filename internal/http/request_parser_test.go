package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty body", "", "$"},
		{"syntax", `{"nome":`, "$"},
		{"wrong type", `{"nome": 5}`, "nome"},
		{"trailing garbage", `{"nome":"Casa","usuarioId":1} garbage`, "$"},
		{"second value", `{"nome":"Casa"}{"nome":"Outra"}`, "$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var in core.CategoryInput
			err := DecodeJSON(httptest.NewRecorder(), r, &in)

			var verr *core.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestDecodeJSONAllowsTrailingWhitespace(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"nome\":\"Casa\"}\n  "))
	var in core.CategoryInput
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &in))
	require.NotNil(t, in.Nome)
	assert.Equal(t, "Casa", *in.Nome)
}

func TestDecodeJSONAcceptsQuotedAmounts(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"valor":"12.5","data":"2024-03-01"}`))
	var in core.MovementInput
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &in))
	require.NotNil(t, in.Valor)
	assert.Equal(t, "12.5", in.Valor.String())
	require.NotNil(t, in.Data)
	assert.Equal(t, 2024, in.Data.Year())
}

func TestParseOptionalID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard?usuarioId=4", nil)
	id, err := ParseOptionalID(r, "usuarioId")
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	r = httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	id, err = ParseOptionalID(r, "usuarioId")
	require.NoError(t, err)
	assert.Zero(t, id)

	r = httptest.NewRequest(http.MethodGet, "/api/dashboard?usuarioId=x", nil)
	_, err = ParseOptionalID(r, "usuarioId")
	assert.Error(t, err)
}
