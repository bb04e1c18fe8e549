package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gastos/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// ParseID reads the {id} route parameter.
func ParseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// ParseOptionalID reads an integer query parameter, zero when absent.
func ParseOptionalID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// DecodeJSON reads a single JSON value into dst. Malformed input, or anything
// after the value, is reported as a *core.ValidationError so it renders like
// any other invalid payload.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			v := core.NewValidationError()
			v.Add("$", "The request body must contain a single JSON value.")
			return v
		}
		return nil
	}

	v := core.NewValidationError()
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		v.Add("$", "A non-empty request body is required.")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "$"
		}
		v.Add(field, fmt.Sprintf("The JSON value could not be converted to %s.", typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		v.Add("$", "The request body is not valid JSON.")
	case errors.As(err, &maxErr):
		v.Add("$", "The request body is too large.")
	default:
		v.Add("$", err.Error())
	}
	return v
}
