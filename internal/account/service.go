package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/money"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=account
type Store interface {
	CreateAccount(ctx context.Context, acc *Account) error
	GetAccount(ctx context.Context, ownerID, id uuid.UUID) (*Account, error)
	ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*Account, error)
	UpdateAccount(ctx context.Context, acc *Account) error
	DeleteAccount(ctx context.Context, ownerID, id uuid.UUID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateParams struct {
	Name     string
	Balance  decimal.Decimal
	Currency money.Currency
}

type UpdateParams struct {
	Name     *string
	Balance  *decimal.Decimal
	Currency *money.Currency
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Account, error) {
	acc := &Account{
		OwnerID: ownerID,
		Name:    params.Name,
		Balance: money.New(params.Balance, params.Currency),
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Account, error) {
	return s.store.GetAccount(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Account, error) {
	return s.store.ListAccounts(ctx, ownerID)
}

// Update edits name, balance, or currency in place. A currency edit re-tags
// the balance without converting it and never touches historical operations.
func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Account, error) {
	acc, err := s.store.GetAccount(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		acc.Name = *params.Name
	}

	if params.Balance != nil {
		acc.Balance.Amount = *params.Balance
	}

	if params.Currency != nil {
		acc.Balance.Currency = *params.Currency
	}

	if err := s.store.UpdateAccount(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// Delete removes the account; the schema cascades removal of every operation
// referencing it.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.store.DeleteAccount(ctx, ownerID, id)
}
