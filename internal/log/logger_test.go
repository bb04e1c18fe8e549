package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Component: ComponentStorage, JSON: true, Output: &buf})

	logger.InfoContext(context.Background(), "Store ready", "path", "/tmp/x.db")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "storage", rec[FieldComponent])
	assert.Equal(t, "/tmp/x.db", rec["path"])
	assert.Equal(t, "Store ready", rec["msg"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Output: &buf})

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestMiddlewareInjectsRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: slog.LevelInfo, Component: ComponentHTTP, JSON: true, Output: &buf})

	h := Middleware(base, func(context.Context) string { return "req_abc" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req_abc", rec[FieldRequestID])
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	assert.Equal(t, ComponentApp, l.Component())
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().WithEntity("movimentacao", 7).WithOperation(OpCreate).WithError(nil)
	assert.Equal(t, "movimentacao", f[FieldEntity])
	assert.Equal(t, int64(7), f[FieldEntityID])
	assert.NotContains(t, f, FieldError)
	assert.Len(t, f.ToSlice(), 6)
}
