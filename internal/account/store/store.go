package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/expenso/internal/account"
	"github.com/MrJamesThe3rd/expenso/internal/money"
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

const selectAccountColumns = `a.id, a.user_id, a.name, a.balance, a.currency, a.created_at, a.updated_at`

func scanAccount(s scanner) (*account.Account, error) {
	var acc account.Account

	var currency string

	if err := s.Scan(
		&acc.ID, &acc.OwnerID, &acc.Name, &acc.Balance.Amount, &currency,
		&acc.CreatedAt, &acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	acc.Balance.Currency = money.Currency(currency)

	return &acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (user_id, name, balance, currency, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		acc.OwnerID,
		acc.Name,
		acc.Balance.Amount,
		string(acc.Balance.Currency),
	).Scan(&acc.ID, &acc.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrNameTaken
		}

		return fmt.Errorf("creating account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.id = $1 AND a.user_id = $2`

	acc, err := scanAccount(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, account.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	return acc, nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	query := `SELECT ` + selectAccountColumns + `
		FROM accounts a
		WHERE a.user_id = $1
		ORDER BY a.created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accs []*account.Account

	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		accs = append(accs, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating account rows: %w", err)
	}

	return accs, nil
}

func (s *Store) UpdateAccount(ctx context.Context, acc *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, balance = $2, currency = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
	`

	res, err := s.db.ExecContext(ctx, query,
		acc.Name,
		acc.Balance.Amount,
		string(acc.Balance.Currency),
		acc.ID,
		acc.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrNameTaken
		}

		return fmt.Errorf("updating account: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1 AND user_id = $2`

	res, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}

	return nil
}
