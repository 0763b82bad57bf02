package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/expenso/internal/category"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectCategoryColumns = `c.id, c.user_id, c.name, c.kind, c.is_default`

func scanCategory(s scanner) (*category.Category, error) {
	var c category.Category

	var kind string

	if err := s.Scan(&c.ID, &c.OwnerID, &c.Name, &kind, &c.IsDefault); err != nil {
		return nil, err
	}

	c.Kind = category.Kind(kind)

	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *Store) CreateCategory(ctx context.Context, c *category.Category) error {
	query := `
		INSERT INTO categories (user_id, name, kind, is_default)
		VALUES ($1, $2, $3, false)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, c.OwnerID, c.Name, string(c.Kind)).Scan(&c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return category.ErrNameTaken
		}

		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, ownerID, id uuid.UUID, kind category.Kind) (*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.id = $1 AND c.kind = $2 AND (c.user_id = $3 OR c.is_default)`

	c, err := scanCategory(s.db.QueryRowContext(ctx, query, id, string(kind), ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	return c, nil
}

func (s *Store) ListCategories(ctx context.Context, ownerID uuid.UUID, kind category.Kind) ([]*category.Category, error) {
	query := `SELECT ` + selectCategoryColumns + `
		FROM categories c
		WHERE c.kind = $1 AND (c.user_id = $2 OR c.is_default)
		ORDER BY c.is_default DESC, c.name ASC`

	rows, err := s.db.QueryContext(ctx, query, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*category.Category

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		cats = append(cats, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}

	return cats, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c *category.Category) error {
	query := `
		UPDATE categories
		SET name = $1
		WHERE id = $2 AND user_id = $3 AND NOT is_default
	`

	res, err := s.db.ExecContext(ctx, query, c.Name, c.ID, c.OwnerID)
	if err != nil {
		if isUniqueViolation(err) {
			return category.ErrNameTaken
		}

		return fmt.Errorf("updating category: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, ownerID, id uuid.UUID, kind category.Kind) error {
	query := `DELETE FROM categories WHERE id = $1 AND kind = $2 AND user_id = $3 AND NOT is_default`

	res, err := s.db.ExecContext(ctx, query, id, string(kind), ownerID)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return category.ErrNotFound
	}

	return nil
}

func (s *Store) CategoryExists(ctx context.Context, ownerID, id uuid.UUID, kind category.Kind) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM categories
		WHERE id = $1 AND kind = $2 AND (user_id = $3 OR is_default)
	)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id, string(kind), ownerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking category existence: %w", err)
	}

	return exists, nil
}
