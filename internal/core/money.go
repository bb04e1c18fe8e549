// Package core holds the domain model of the finance tracker: users, categories,
// movement types, movements, and the dashboard summary computed over them.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount reads a decimal amount typed by a person. Both "12.34" and
// "12,34" are accepted, and a dot used as thousands separator next to a decimal
// comma ("1.234,56") is handled. The result is rounded to cents.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// FormatBRL renders an amount the way the pages display it, e.g. "R$ 1.234,56".
func FormatBRL(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}

// Ptr returns a pointer to v, for building write payloads.
func Ptr[T any](v T) *T {
	return &v
}
