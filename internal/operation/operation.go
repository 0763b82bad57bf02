package operation

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/money"
)

var (
	ErrNotFound            = errors.New("operation not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrFromAccountNotFound = errors.New("from account not found")
	ErrToAccountNotFound   = errors.New("to account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSameAccount         = errors.New("cannot transfer to the same account")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrInvalidRate         = errors.New("exchange rate must be greater than zero")
	ErrMissingExchangeRate = errors.New("exchange rate required for cross-currency transfer")
)

// Kind discriminates the three operation variants sharing the envelope.
type Kind string

const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindTransfer Kind = "transfer"
)

// Conversion records the cross-currency leg of a transfer. It is present if
// and only if the transfer crossed currencies: Amount is the credited amount
// in the destination account's currency and Amount = operation amount * Rate.
type Conversion struct {
	Amount money.Money
	Rate   decimal.Decimal
}

// Operation is the record of truth behind every balance change. Amount is
// always positive and expressed in the source account's currency (the
// destination account's for income); the sign of the applied delta is implied
// by the kind.
type Operation struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	Kind          Kind
	FromAccountID *uuid.UUID // expense, transfer
	ToAccountID   *uuid.UUID // income, transfer
	CategoryID    *uuid.UUID // income, expense
	Amount        money.Money
	Conversion    *Conversion // transfer across currencies only
	Note          string
	CreatedAt     time.Time
}

// credited is the amount the destination side received: the converted amount
// when currencies differed, the plain amount otherwise.
func (o *Operation) credited() money.Money {
	if o.Conversion != nil {
		return o.Conversion.Amount
	}

	return o.Amount
}
