// Package money provides a currency-tagged decimal amount. Arithmetic is
// defined only between values of the same currency; crossing currencies
// requires an explicit conversion rate.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var (
	ErrInvalidCurrency  = errors.New("invalid currency code")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Currency is an upper-case ISO 4217 code, e.g. "USD".
type Currency string

func ParseCurrency(code string) (Currency, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}

	return Currency(unit.String()), nil
}

func (c Currency) String() string { return string(c) }

// Money is an exact decimal amount in a single currency.
type Money struct {
	Amount   decimal.Decimal
	Currency Currency
}

func New(amount decimal.Decimal, cur Currency) Money {
	return Money{Amount: amount, Currency: cur}
}

// Zero returns a zero amount in the given currency.
func Zero(cur Currency) Money {
	return Money{Amount: decimal.Zero, Currency: cur}
}

func (m Money) Add(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}

	return Money{Amount: m.Amount.Add(o.Amount), Currency: m.Currency}, nil
}

func (m Money) Sub(o Money) (Money, error) {
	if m.Currency != o.Currency {
		return Money{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, m.Currency, o.Currency)
	}

	return Money{Amount: m.Amount.Sub(o.Amount), Currency: m.Currency}, nil
}

// Convert applies an exchange rate and re-tags the result with the target
// currency. The rate is target units per source unit.
func (m Money) Convert(rate decimal.Decimal, to Currency) Money {
	return Money{Amount: m.Amount.Mul(rate), Currency: to}
}

// Neg flips the sign. Used for balance deltas only; stored operation amounts
// are always positive.
func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) IsPositive() bool { return m.Amount.IsPositive() }

func (m Money) Equal(o Money) bool {
	return m.Currency == o.Currency && m.Amount.Equal(o.Amount)
}

func (m Money) String() string {
	return m.Amount.String() + " " + string(m.Currency)
}
