// Package http exposes the finance tracker over a JSON REST API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"gastos/internal/core"
	"gastos/internal/log"
)

const (
	titleValidation = "One or more validation errors occurred."
	titleBadRequest = "Bad Request"
	titleServer     = "An error occurred while processing your request."
	titleConflict   = "Conflict"
	titleAuth       = "Unauthorized"
)

// Problem is the error body shape shared by every failing response.
type Problem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// JSONResponseBuilder provides a fluent API for writing JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	hasBody    bool
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Location sets the Location header of a 201 response.
func (b *JSONResponseBuilder) Location(path string) *JSONResponseBuilder {
	return b.Header("Location", path)
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	b.hasBody = true
	return b
}

func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if !b.hasBody {
		w.WriteHeader(b.statusCode)
		return
	}

	w.Header().Set("Content-Type", contentType(b.body))
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

func contentType(body any) string {
	if _, ok := body.(Problem); ok {
		return "application/problem+json; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

func OK(body any) *JSONResponseBuilder {
	return NewJSONResponse().Body(body)
}

func Created(location string, body any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Location(location).Body(body)
}

func NoContent() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNoContent)
}

// NotFound has no body.
func NotFound() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNotFound)
}

func BadRequest(detail string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).
		Body(Problem{Title: titleBadRequest, Status: http.StatusBadRequest, Detail: detail})
}

func ValidationProblem(v *core.ValidationError) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).
		Body(Problem{Title: titleValidation, Status: http.StatusBadRequest, Errors: v.Fields})
}

func Unauthorized(detail string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusUnauthorized).
		Header("WWW-Authenticate", `Bearer realm="gastos"`).
		Body(Problem{Title: titleAuth, Status: http.StatusUnauthorized, Detail: detail})
}

func Conflict(detail string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusConflict).
		Body(Problem{Title: titleConflict, Status: http.StatusConflict, Detail: detail})
}

// InternalServerError reports err together with its innermost cause.
func InternalServerError(err error) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusInternalServerError).
		Body(Problem{Title: titleServer, Status: http.StatusInternalServerError, Detail: errorDetail(err)})
}

func errorDetail(err error) string {
	inner := rootCause(err)
	return err.Error() + " | Detalhes: " + inner.Error()
}

func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// ErrorResponse maps a service error onto its HTTP response.
func ErrorResponse(err error) *JSONResponseBuilder {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return ValidationProblem(verr)
	case errors.Is(err, core.ErrNotFound):
		return NotFound()
	case errors.Is(err, core.ErrInvalidCredentials):
		return Unauthorized("E-mail ou senha inválidos.")
	case errors.Is(err, core.ErrUnauthorized):
		return Unauthorized(strings.TrimPrefix(err.Error(), core.ErrUnauthorized.Error()+": "))
	case errors.Is(err, core.ErrEmailTaken):
		return Conflict("E-mail já cadastrado.")
	}
	return InternalServerError(err)
}

// writeError logs server side failures and writes the mapped response.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorResponse(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).ErrorContext(r.Context(), "Request failed",
			log.NewFields().WithOperation(op).WithError(err).ToSlice()...)
	}
	resp.Write(w)
}
