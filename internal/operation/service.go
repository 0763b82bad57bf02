// Package operation implements the ledger of income, expense, and transfer
// operations and the engine keeping account balances consistent with it.
// Every handler validates all referenced entities before applying any balance
// delta, and applies deltas plus the operation write inside one transaction.
package operation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	"github.com/MrJamesThe3rd/expenso/internal/money"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=operation
type Repository interface {
	GetOperation(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (*Operation, error)
	ListOperations(ctx context.Context, ownerID uuid.UUID, kind Kind, filter ListFilter) ([]*Operation, error)

	Begin(ctx context.Context) (Tx, error)
}

// Tx is one atomic unit of work. Account rows fetched through it are locked
// until Commit or Rollback, which serializes concurrent requests touching the
// same account.
type Tx interface {
	GetAccountForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error)
	CategoryExists(ctx context.Context, ownerID, id uuid.UUID, kind category.Kind) (bool, error)
	GetOperationForUpdate(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (*Operation, error)

	// ApplyDelta adds a signed amount to an account balance. The delta must
	// already be expressed in the account's currency; no conversion happens
	// here.
	ApplyDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error

	InsertOperation(ctx context.Context, op *Operation) error
	UpdateOperation(ctx context.Context, op *Operation) error
	DeleteOperation(ctx context.Context, id uuid.UUID) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateParams creates an income or expense against one account.
type CreateParams struct {
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	Amount     decimal.Decimal
	Note       string
}

type CreateTransferParams struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	ExchangeRate  *decimal.Decimal
	Note          string
}

type UpdateParams struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Amount     *decimal.Decimal
	Note       *string
}

type UpdateTransferParams struct {
	FromAccountID *uuid.UUID
	ToAccountID   *uuid.UUID
	Amount        *decimal.Decimal
	ExchangeRate  *decimal.Decimal
	Note          *string
}

func (s *Service) CreateIncome(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Operation, error) {
	return s.createCategorized(ctx, ownerID, KindIncome, params)
}

func (s *Service) CreateExpense(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Operation, error) {
	return s.createCategorized(ctx, ownerID, KindExpense, params)
}

func (s *Service) createCategorized(ctx context.Context, ownerID uuid.UUID, kind Kind, params CreateParams) (*Operation, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	acc, err := tx.GetAccountForUpdate(ctx, ownerID, params.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}

		return nil, fmt.Errorf("resolving account: %w", err)
	}

	ok, err := tx.CategoryExists(ctx, ownerID, params.CategoryID, categoryKind(kind))
	if err != nil {
		return nil, fmt.Errorf("resolving category: %w", err)
	}

	if !ok {
		return nil, ErrCategoryNotFound
	}

	categoryID := params.CategoryID
	op := &Operation{
		OwnerID:    ownerID,
		Kind:       kind,
		CategoryID: &categoryID,
		Amount:     money.New(params.Amount, acc.Balance.Currency),
		Note:       params.Note,
	}

	if kind == KindIncome {
		op.ToAccountID = &acc.ID
	} else {
		op.FromAccountID = &acc.ID
	}

	if err := tx.ApplyDelta(ctx, acc.ID, signed(params.Amount, kind)); err != nil {
		return nil, fmt.Errorf("applying delta: %w", err)
	}

	if err := tx.InsertOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("inserting operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return op, nil
}

func (s *Service) CreateTransfer(ctx context.Context, ownerID uuid.UUID, params CreateTransferParams) (*Operation, error) {
	if !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if params.ExchangeRate != nil && !params.ExchangeRate.IsPositive() {
		return nil, ErrInvalidRate
	}

	if params.FromAccountID == params.ToAccountID {
		return nil, ErrSameAccount
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	accs, err := lockAccounts(ctx, tx, ownerID, params.FromAccountID, params.ToAccountID)
	if err != nil {
		return nil, err
	}

	from, ok := accs[params.FromAccountID]
	if !ok {
		return nil, ErrFromAccountNotFound
	}

	to, ok := accs[params.ToAccountID]
	if !ok {
		return nil, ErrToAccountNotFound
	}

	op := &Operation{
		OwnerID:       ownerID,
		Kind:          KindTransfer,
		FromAccountID: &from.ID,
		ToAccountID:   &to.ID,
		Amount:        money.New(params.Amount, from.Balance.Currency),
		Note:          params.Note,
	}

	if from.Balance.Currency != to.Balance.Currency {
		if params.ExchangeRate == nil {
			return nil, ErrMissingExchangeRate
		}

		op.Conversion = &Conversion{
			Amount: op.Amount.Convert(*params.ExchangeRate, to.Balance.Currency),
			Rate:   *params.ExchangeRate,
		}
	}

	if err := tx.ApplyDelta(ctx, from.ID, params.Amount.Neg()); err != nil {
		return nil, fmt.Errorf("applying from delta: %w", err)
	}

	if err := tx.ApplyDelta(ctx, to.ID, op.credited().Amount); err != nil {
		return nil, fmt.Errorf("applying to delta: %w", err)
	}

	if err := tx.InsertOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("inserting operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return op, nil
}

func (s *Service) UpdateIncome(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Operation, error) {
	return s.updateCategorized(ctx, ownerID, id, KindIncome, params)
}

func (s *Service) UpdateExpense(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Operation, error) {
	return s.updateCategorized(ctx, ownerID, id, KindExpense, params)
}

// updateCategorized patches an income or expense. Balance adjustments are
// diffs against the operation's previous state: an amount change applies
// newAmount-oldAmount, an account move reverses the full old amount on the old
// account and applies the full new amount on the new one.
func (s *Service) updateCategorized(ctx context.Context, ownerID, id uuid.UUID, kind Kind, params UpdateParams) (*Operation, error) {
	if params.Amount != nil && !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	op, err := tx.GetOperationForUpdate(ctx, ownerID, id, kind)
	if err != nil {
		return nil, err
	}

	curID := op.ToAccountID
	if kind == KindExpense {
		curID = op.FromAccountID
	}

	accountChanged := params.AccountID != nil && *params.AccountID != *curID

	ids := []uuid.UUID{*curID}
	if accountChanged {
		ids = append(ids, *params.AccountID)
	}

	accs, err := lockAccounts(ctx, tx, ownerID, ids...)
	if err != nil {
		return nil, err
	}

	oldAcc, ok := accs[*curID]
	if !ok {
		return nil, ErrAccountNotFound
	}

	var newAcc *account.Account

	if accountChanged {
		if newAcc, ok = accs[*params.AccountID]; !ok {
			return nil, ErrAccountNotFound
		}
	}

	// Validate the category before any balance is touched.
	if params.CategoryID != nil && (op.CategoryID == nil || *params.CategoryID != *op.CategoryID) {
		ok, err := tx.CategoryExists(ctx, ownerID, *params.CategoryID, categoryKind(kind))
		if err != nil {
			return nil, fmt.Errorf("resolving category: %w", err)
		}

		if !ok {
			return nil, ErrCategoryNotFound
		}

		op.CategoryID = params.CategoryID
	}

	oldAmount := op.Amount.Amount

	newAmount := oldAmount
	if params.Amount != nil {
		newAmount = *params.Amount
	}

	switch {
	case accountChanged:
		if err := tx.ApplyDelta(ctx, oldAcc.ID, signed(oldAmount, kind).Neg()); err != nil {
			return nil, fmt.Errorf("reversing old delta: %w", err)
		}

		if err := tx.ApplyDelta(ctx, newAcc.ID, signed(newAmount, kind)); err != nil {
			return nil, fmt.Errorf("applying new delta: %w", err)
		}

		if kind == KindIncome {
			op.ToAccountID = &newAcc.ID
		} else {
			op.FromAccountID = &newAcc.ID
		}

		op.Amount = money.New(newAmount, newAcc.Balance.Currency)

	case params.Amount != nil && !newAmount.Equal(oldAmount):
		if err := tx.ApplyDelta(ctx, oldAcc.ID, signed(newAmount.Sub(oldAmount), kind)); err != nil {
			return nil, fmt.Errorf("applying delta: %w", err)
		}

		op.Amount.Amount = newAmount
	}

	if params.Note != nil {
		op.Note = *params.Note
	}

	if err := tx.UpdateOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("updating operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return op, nil
}

func (s *Service) UpdateTransfer(ctx context.Context, ownerID, id uuid.UUID, params UpdateTransferParams) (*Operation, error) {
	if params.Amount != nil && !params.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if params.ExchangeRate != nil && !params.ExchangeRate.IsPositive() {
		return nil, ErrInvalidRate
	}

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	op, err := tx.GetOperationForUpdate(ctx, ownerID, id, KindTransfer)
	if err != nil {
		return nil, err
	}

	oldFromID, oldToID := *op.FromAccountID, *op.ToAccountID

	targetFromID := oldFromID
	if params.FromAccountID != nil {
		targetFromID = *params.FromAccountID
	}

	targetToID := oldToID
	if params.ToAccountID != nil {
		targetToID = *params.ToAccountID
	}

	if targetFromID == targetToID {
		return nil, ErrSameAccount
	}

	oldAmount := op.Amount
	oldCredited := op.credited()

	newAmount := oldAmount.Amount
	if params.Amount != nil {
		newAmount = *params.Amount
	}

	switch {
	case targetFromID != oldFromID || targetToID != oldToID:
		accs, err := lockAccounts(ctx, tx, ownerID, oldFromID, oldToID, targetFromID, targetToID)
		if err != nil {
			return nil, err
		}

		newFrom, ok := accs[targetFromID]
		if !ok {
			return nil, ErrFromAccountNotFound
		}

		newTo, ok := accs[targetToID]
		if !ok {
			return nil, ErrToAccountNotFound
		}

		newAmountM := money.New(newAmount, newFrom.Balance.Currency)

		var conv *Conversion

		if newFrom.Balance.Currency != newTo.Balance.Currency {
			if params.ExchangeRate == nil {
				return nil, ErrMissingExchangeRate
			}

			conv = &Conversion{
				Amount: newAmountM.Convert(*params.ExchangeRate, newTo.Balance.Currency),
				Rate:   *params.ExchangeRate,
			}
		}

		// Validation is complete; reverse the old effects, then apply the new.
		if oldFrom, ok := accs[oldFromID]; ok {
			if err := tx.ApplyDelta(ctx, oldFrom.ID, oldAmount.Amount); err != nil {
				return nil, fmt.Errorf("reversing old from delta: %w", err)
			}
		}

		if oldTo, ok := accs[oldToID]; ok {
			if err := tx.ApplyDelta(ctx, oldTo.ID, oldCredited.Amount.Neg()); err != nil {
				return nil, fmt.Errorf("reversing old to delta: %w", err)
			}
		}

		if err := tx.ApplyDelta(ctx, newFrom.ID, newAmount.Neg()); err != nil {
			return nil, fmt.Errorf("applying new from delta: %w", err)
		}

		credited := newAmountM
		if conv != nil {
			credited = conv.Amount
		}

		if err := tx.ApplyDelta(ctx, newTo.ID, credited.Amount); err != nil {
			return nil, fmt.Errorf("applying new to delta: %w", err)
		}

		op.FromAccountID = &newFrom.ID
		op.ToAccountID = &newTo.ID
		op.Amount = newAmountM
		op.Conversion = conv

	case params.Amount != nil && !newAmount.Equal(oldAmount.Amount):
		accs, err := lockAccounts(ctx, tx, ownerID, oldFromID, oldToID)
		if err != nil {
			return nil, err
		}

		from, ok := accs[oldFromID]
		if !ok {
			return nil, ErrFromAccountNotFound
		}

		to, ok := accs[oldToID]
		if !ok {
			return nil, ErrToAccountNotFound
		}

		newAmountM := money.New(newAmount, from.Balance.Currency)

		var conv *Conversion

		if from.Balance.Currency != to.Balance.Currency {
			if params.ExchangeRate == nil {
				return nil, ErrMissingExchangeRate
			}

			conv = &Conversion{
				Amount: newAmountM.Convert(*params.ExchangeRate, to.Balance.Currency),
				Rate:   *params.ExchangeRate,
			}
		}

		if err := tx.ApplyDelta(ctx, from.ID, oldAmount.Amount.Sub(newAmount)); err != nil {
			return nil, fmt.Errorf("applying from delta: %w", err)
		}

		credited := newAmountM
		if conv != nil {
			credited = conv.Amount
		}

		if err := tx.ApplyDelta(ctx, to.ID, credited.Amount.Sub(oldCredited.Amount)); err != nil {
			return nil, fmt.Errorf("applying to delta: %w", err)
		}

		op.Amount = newAmountM
		op.Conversion = conv
	}

	if params.Note != nil {
		op.Note = *params.Note
	}

	if err := tx.UpdateOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("updating operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return op, nil
}

// Delete removes an operation and reverses its recorded effect on every
// participant account that still exists. A side whose account was removed has
// no balance left to adjust; its reversal is skipped.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID, kind Kind) error {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	op, err := tx.GetOperationForUpdate(ctx, ownerID, id, kind)
	if err != nil {
		return err
	}

	var ids []uuid.UUID

	if op.FromAccountID != nil {
		ids = append(ids, *op.FromAccountID)
	}

	if op.ToAccountID != nil {
		ids = append(ids, *op.ToAccountID)
	}

	accs, err := lockAccounts(ctx, tx, ownerID, ids...)
	if err != nil {
		return err
	}

	if op.FromAccountID != nil {
		if from, ok := accs[*op.FromAccountID]; ok {
			if err := tx.ApplyDelta(ctx, from.ID, op.Amount.Amount); err != nil {
				return fmt.Errorf("reversing from delta: %w", err)
			}
		}
	}

	if op.ToAccountID != nil {
		if to, ok := accs[*op.ToAccountID]; ok {
			if err := tx.ApplyDelta(ctx, to.ID, op.credited().Amount.Neg()); err != nil {
				return fmt.Errorf("reversing to delta: %w", err)
			}
		}
	}

	if err := tx.DeleteOperation(ctx, op.ID); err != nil {
		return fmt.Errorf("deleting operation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (*Operation, error) {
	return s.repo.GetOperation(ctx, ownerID, id, kind)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID, kind Kind, filter ListFilter) ([]*Operation, error) {
	return s.repo.ListOperations(ctx, ownerID, kind, filter)
}

// signed orients a positive amount as a balance delta: incomes credit,
// expenses debit.
func signed(amount decimal.Decimal, kind Kind) decimal.Decimal {
	if kind == KindExpense {
		return amount.Neg()
	}

	return amount
}

func categoryKind(kind Kind) category.Kind {
	if kind == KindIncome {
		return category.KindIncome
	}

	return category.KindExpense
}

// lockAccounts fetches accounts with row locks in a stable order so two
// requests touching the same pair cannot lock them in opposite order.
// Accounts that do not exist for the owner are simply absent from the result.
func lockAccounts(ctx context.Context, tx Tx, ownerID uuid.UUID, ids ...uuid.UUID) (map[uuid.UUID]*account.Account, error) {
	uniq := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}

		uniq = append(uniq, id)
	}

	slices.SortFunc(uniq, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })

	accs := make(map[uuid.UUID]*account.Account, len(uniq))

	for _, id := range uniq {
		acc, err := tx.GetAccountForUpdate(ctx, ownerID, id)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				continue
			}

			return nil, fmt.Errorf("locking account: %w", err)
		}

		accs[id] = acc
	}

	return accs, nil
}
