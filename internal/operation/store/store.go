package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/category"
	"github.com/MrJamesThe3rd/expenso/internal/money"
	"github.com/MrJamesThe3rd/expenso/internal/operation"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectOperationColumns = `
	o.id, o.user_id, o.kind, o.from_account_id, o.to_account_id, o.category_id,
	o.amount, o.currency, o.converted_amount, o.converted_currency, o.exchange_rate,
	o.note, o.created_at
`

// scanOperation reads an operation row. The conversion triple is all-or-nothing
// in the schema; a non-null exchange_rate implies the other two columns.
func scanOperation(s scanner) (*operation.Operation, error) {
	var op operation.Operation

	var (
		kind              string
		currency          string
		convertedAmount   decimal.NullDecimal
		convertedCurrency sql.NullString
		exchangeRate      decimal.NullDecimal
		note              sql.NullString
	)

	if err := s.Scan(
		&op.ID, &op.OwnerID, &kind, &op.FromAccountID, &op.ToAccountID, &op.CategoryID,
		&op.Amount.Amount, &currency, &convertedAmount, &convertedCurrency, &exchangeRate,
		&note, &op.CreatedAt,
	); err != nil {
		return nil, err
	}

	op.Kind = operation.Kind(kind)
	op.Amount.Currency = money.Currency(currency)
	op.Note = note.String

	if exchangeRate.Valid {
		op.Conversion = &operation.Conversion{
			Amount: money.New(convertedAmount.Decimal, money.Currency(convertedCurrency.String)),
			Rate:   exchangeRate.Decimal,
		}
	}

	return &op, nil
}

func (s *Store) GetOperation(ctx context.Context, ownerID, id uuid.UUID, kind operation.Kind) (*operation.Operation, error) {
	query := `SELECT ` + selectOperationColumns + `
		FROM operations o
		WHERE o.id = $1 AND o.user_id = $2 AND o.kind = $3`

	op, err := scanOperation(s.db.QueryRowContext(ctx, query, id, ownerID, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrNotFound
		}

		return nil, fmt.Errorf("getting operation: %w", err)
	}

	return op, nil
}

func (s *Store) ListOperations(ctx context.Context, ownerID uuid.UUID, kind operation.Kind, filter operation.ListFilter) ([]*operation.Operation, error) {
	query := `SELECT ` + selectOperationColumns + `
		FROM operations o
		WHERE o.user_id = $1 AND o.kind = $2`

	args := []any{ownerID, string(kind)}
	argIdx := 3

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND o.created_at >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND o.created_at <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY o.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*operation.Operation

	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}

		ops = append(ops, op)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operation rows: %w", err)
	}

	return ops, nil
}

type engineTx struct {
	tx *sql.Tx
}

func (s *Store) Begin(ctx context.Context) (operation.Tx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning engine tx: %w", err)
	}

	return &engineTx{tx: dbTx}, nil
}

func (t *engineTx) Commit() error   { return t.tx.Commit() }
func (t *engineTx) Rollback() error { return t.tx.Rollback() }

func (t *engineTx) GetAccountForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT id, user_id, name, balance, currency, created_at, updated_at
		FROM accounts
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`

	var acc account.Account

	var currency string

	err := t.tx.QueryRowContext(ctx, query, id, ownerID).Scan(
		&acc.ID, &acc.OwnerID, &acc.Name, &acc.Balance.Amount, &currency,
		&acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("locking account row: %w", err)
	}

	acc.Balance.Currency = money.Currency(currency)

	return &acc, nil
}

func (t *engineTx) CategoryExists(ctx context.Context, ownerID, id uuid.UUID, kind category.Kind) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM categories
		WHERE id = $1 AND kind = $2 AND (user_id = $3 OR is_default)
	)`

	var exists bool
	if err := t.tx.QueryRowContext(ctx, query, id, string(kind), ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking category existence: %w", err)
	}

	return exists, nil
}

func (t *engineTx) GetOperationForUpdate(ctx context.Context, ownerID, id uuid.UUID, kind operation.Kind) (*operation.Operation, error) {
	query := `SELECT ` + selectOperationColumns + `
		FROM operations o
		WHERE o.id = $1 AND o.user_id = $2 AND o.kind = $3
		FOR UPDATE`

	op, err := scanOperation(t.tx.QueryRowContext(ctx, query, id, ownerID, string(kind)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrNotFound
		}

		return nil, fmt.Errorf("locking operation row: %w", err)
	}

	return op, nil
}

func (t *engineTx) ApplyDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	if _, err := t.tx.ExecContext(ctx, query, delta, accountID); err != nil {
		return fmt.Errorf("applying balance delta: %w", err)
	}

	return nil
}

func (t *engineTx) InsertOperation(ctx context.Context, op *operation.Operation) error {
	query := `
		INSERT INTO operations (
			user_id, kind, from_account_id, to_account_id, category_id,
			amount, currency, converted_amount, converted_currency, exchange_rate,
			note, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		RETURNING id, created_at
	`

	convertedAmount, convertedCurrency, exchangeRate := conversionColumns(op)

	err := t.tx.QueryRowContext(ctx, query,
		op.OwnerID,
		string(op.Kind),
		op.FromAccountID,
		op.ToAccountID,
		op.CategoryID,
		op.Amount.Amount,
		string(op.Amount.Currency),
		convertedAmount,
		convertedCurrency,
		exchangeRate,
		noteColumn(op.Note),
	).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting operation: %w", err)
	}

	return nil
}

func (t *engineTx) UpdateOperation(ctx context.Context, op *operation.Operation) error {
	query := `
		UPDATE operations
		SET from_account_id = $1, to_account_id = $2, category_id = $3,
			amount = $4, currency = $5, converted_amount = $6,
			converted_currency = $7, exchange_rate = $8, note = $9
		WHERE id = $10
	`

	convertedAmount, convertedCurrency, exchangeRate := conversionColumns(op)

	_, err := t.tx.ExecContext(ctx, query,
		op.FromAccountID,
		op.ToAccountID,
		op.CategoryID,
		op.Amount.Amount,
		string(op.Amount.Currency),
		convertedAmount,
		convertedCurrency,
		exchangeRate,
		noteColumn(op.Note),
		op.ID,
	)
	if err != nil {
		return fmt.Errorf("updating operation: %w", err)
	}

	return nil
}

func (t *engineTx) DeleteOperation(ctx context.Context, id uuid.UUID) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM operations WHERE id = $1`, id); err != nil {
		return fmt.Errorf("deleting operation: %w", err)
	}

	return nil
}

func conversionColumns(op *operation.Operation) (decimal.NullDecimal, sql.NullString, decimal.NullDecimal) {
	if op.Conversion == nil {
		return decimal.NullDecimal{}, sql.NullString{}, decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: op.Conversion.Amount.Amount, Valid: true},
		sql.NullString{String: string(op.Conversion.Amount.Currency), Valid: true},
		decimal.NullDecimal{Decimal: op.Conversion.Rate, Valid: true}
}

func noteColumn(note string) sql.NullString {
	return sql.NullString{String: note, Valid: note != ""}
}
