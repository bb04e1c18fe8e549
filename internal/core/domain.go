package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a movement type as money coming in or going out.
type Kind string

const (
	KindIncome  Kind = "receita"
	KindExpense Kind = "despesa"
)

type (
	User struct {
		ID        int64  `json:"id"`
		Nome      string `json:"nome"`
		Email     string `json:"email"`
		SenhaHash string `json:"-"`
	}

	Category struct {
		ID        int64  `json:"id"`
		Nome      string `json:"nome"`
		UsuarioID int64  `json:"usuarioId"`
	}

	MovementType struct {
		ID       int64  `json:"id"`
		Nome     string `json:"nome"`
		Natureza Kind   `json:"natureza"`
	}

	// Movement is a single income or expense record. The related entities are
	// populated on reads and ignored on writes.
	Movement struct {
		ID                 int64           `json:"id"`
		Descricao          string          `json:"descricao"`
		Valor              decimal.Decimal `json:"valor"`
		Data               Date            `json:"data"`
		Fixo               bool            `json:"fixo"`
		TipoMovimentacaoID int64           `json:"tipoMovimentacaoId"`
		CategoriaID        int64           `json:"categoriaId"`
		UsuarioID          int64           `json:"usuarioId"`

		TipoMovimentacao *MovementType `json:"tipoMovimentacao,omitempty"`
		Categoria        *Category     `json:"categoria,omitempty"`
		Usuario          *User         `json:"usuario,omitempty"`
	}

	// Session is the server side record behind a signed token.
	Session struct {
		ID        string
		UsuarioID int64
		CreatedAt time.Time
		ExpiresAt time.Time
	}
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidKind        = errors.New("invalid natureza")
)

// ParseKind accepts the stored values and their English aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receita", "income":
		return KindIncome, nil
	case "despesa", "expense":
		return KindExpense, nil
	}
	return "", ErrInvalidKind
}

// KindFromName derives the kind of a movement type from its display name.
// Only "receita", in any case, is income.
func KindFromName(nome string) Kind {
	if strings.EqualFold(strings.TrimSpace(nome), "receita") {
		return KindIncome
	}
	return KindExpense
}

func (k Kind) IsIncome() bool { return k == KindIncome }

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
