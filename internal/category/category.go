package category

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrNameTaken = errors.New("category name already exists")
)

// Kind splits categories between the two categorized operation kinds.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Category labels income and expense operations. A nil OwnerID together with
// IsDefault marks a system-wide category usable by any owner.
type Category struct {
	ID        uuid.UUID
	OwnerID   *uuid.UUID
	Name      string
	Kind      Kind
	IsDefault bool
}
