package core

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError collects per-field problems with a write payload.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Err returns nil when nothing was added.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func required(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func requireText(v *ValidationError, field string, s *string) {
	if s == nil || strings.TrimSpace(*s) == "" {
		v.Add(field, required(field))
	}
}

func requireID(v *ValidationError, field string, id *int64) {
	if id == nil {
		v.Add(field, required(field))
		return
	}
	if *id <= 0 {
		v.Add(field, fmt.Sprintf("The %s field must be a positive id.", field))
	}
}

// Write payloads use pointers so a missing field can be told apart from a zero value.
type (
	UserInput struct {
		ID        *int64  `json:"id,omitempty"`
		Nome      *string `json:"nome,omitempty"`
		Email     *string `json:"email,omitempty"`
		Senha     *string `json:"senha,omitempty"`
		SenhaHash *string `json:"senhaHash,omitempty"`
	}

	CategoryInput struct {
		ID        *int64  `json:"id,omitempty"`
		Nome      *string `json:"nome,omitempty"`
		UsuarioID *int64  `json:"usuarioId,omitempty"`
	}

	MovementTypeInput struct {
		ID       *int64  `json:"id,omitempty"`
		Nome     *string `json:"nome,omitempty"`
		Natureza *string `json:"natureza,omitempty"`
	}

	MovementInput struct {
		ID                 *int64           `json:"id,omitempty"`
		Descricao          *string          `json:"descricao,omitempty"`
		Valor              *decimal.Decimal `json:"valor,omitempty"`
		Data               *Date            `json:"data,omitempty"`
		Fixo               *bool            `json:"fixo,omitempty"`
		TipoMovimentacaoID *int64           `json:"tipoMovimentacaoId,omitempty"`
		CategoriaID        *int64           `json:"categoriaId,omitempty"`
		UsuarioID          *int64           `json:"usuarioId,omitempty"`
	}
)

// Password returns the plain password, accepting the legacy senhaHash name.
func (in UserInput) Password() string {
	if in.Senha != nil {
		return *in.Senha
	}
	if in.SenhaHash != nil {
		return *in.SenhaHash
	}
	return ""
}

func (in UserInput) Validate() error {
	v := NewValidationError()
	requireText(v, "nome", in.Nome)
	requireText(v, "email", in.Email)
	if in.Email != nil && strings.TrimSpace(*in.Email) != "" {
		if _, err := mail.ParseAddress(*in.Email); err != nil {
			v.Add("email", "The email field is not a valid e-mail address.")
		}
	}
	if strings.TrimSpace(in.Password()) == "" {
		v.Add("senha", required("senha"))
	}
	return v.Err()
}

func (in UserInput) User() User {
	return User{Nome: strings.TrimSpace(deref(in.Nome)), Email: strings.TrimSpace(deref(in.Email))}
}

func (in CategoryInput) Validate() error {
	v := NewValidationError()
	requireText(v, "nome", in.Nome)
	requireID(v, "usuarioId", in.UsuarioID)
	return v.Err()
}

func (in CategoryInput) Category() Category {
	return Category{Nome: strings.TrimSpace(deref(in.Nome)), UsuarioID: derefID(in.UsuarioID)}
}

func (in MovementTypeInput) Validate() error {
	v := NewValidationError()
	requireText(v, "nome", in.Nome)
	if in.Natureza != nil {
		k, err := ParseKind(*in.Natureza)
		switch {
		case err != nil:
			v.Add("natureza", "The natureza field must be 'receita' or 'despesa'.")
		case k != KindFromName(deref(in.Nome)):
			v.Add("natureza", fmt.Sprintf("The natureza field must be '%s' for the name '%s'.",
				KindFromName(deref(in.Nome)), strings.TrimSpace(deref(in.Nome))))
		}
	}
	return v.Err()
}

// MovementType resolves the kind from the name. A natureza, when given, has
// already been checked to agree with it.
func (in MovementTypeInput) MovementType() MovementType {
	nome := strings.TrimSpace(deref(in.Nome))
	return MovementType{Nome: nome, Natureza: KindFromName(nome)}
}

func (in MovementInput) Validate() error {
	v := NewValidationError()
	requireText(v, "descricao", in.Descricao)
	if in.Valor == nil {
		v.Add("valor", required("valor"))
	}
	if in.Data == nil || in.Data.IsZero() {
		v.Add("data", required("data"))
	}
	requireID(v, "tipoMovimentacaoId", in.TipoMovimentacaoID)
	requireID(v, "categoriaId", in.CategoriaID)
	requireID(v, "usuarioId", in.UsuarioID)
	return v.Err()
}

// Movement builds the record to persist. An absent fixo flag means false.
func (in MovementInput) Movement() Movement {
	m := Movement{
		Descricao:          strings.TrimSpace(deref(in.Descricao)),
		TipoMovimentacaoID: derefID(in.TipoMovimentacaoID),
		CategoriaID:        derefID(in.CategoriaID),
		UsuarioID:          derefID(in.UsuarioID),
	}
	if in.Valor != nil {
		m.Valor = *in.Valor
	}
	if in.Data != nil {
		m.Data = in.Data.UTC()
	}
	if in.Fixo != nil {
		m.Fixo = *in.Fixo
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// BodyID returns the id carried in the payload body, if any.
func (in UserInput) BodyID() *int64         { return in.ID }
func (in CategoryInput) BodyID() *int64     { return in.ID }
func (in MovementTypeInput) BodyID() *int64 { return in.ID }
func (in MovementInput) BodyID() *int64     { return in.ID }
