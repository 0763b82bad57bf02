package account

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/money"
)

var (
	ErrNotFound  = errors.New("account not found")
	ErrNameTaken = errors.New("account name already exists")
)

// Account is an owner-scoped account. Balance is always expressed in the
// account's currency and, outside explicit user edits, is mutated only by the
// operation engine's delta application.
type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Balance   money.Money
	CreatedAt time.Time
	UpdatedAt *time.Time
}
