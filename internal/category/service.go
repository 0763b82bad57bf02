package category

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=category
type Store interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (*Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID, kind Kind) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, ownerID, id uuid.UUID, kind Kind) error
	CategoryExists(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (bool, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string, kind Kind) (*Category, error) {
	c := &Category{
		OwnerID: &ownerID,
		Name:    name,
		Kind:    kind,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Get resolves a category that is either owned by the caller or a default.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (*Category, error) {
	return s.store.GetCategory(ctx, ownerID, id, kind)
}

// List returns the caller's categories of the given kind plus the defaults.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID, kind Kind) ([]*Category, error) {
	return s.store.ListCategories(ctx, ownerID, kind)
}

// Rename edits an owned category. Defaults are immutable.
func (s *Service) Rename(ctx context.Context, ownerID, id uuid.UUID, kind Kind, name string) (*Category, error) {
	c, err := s.store.GetCategory(ctx, ownerID, id, kind)
	if err != nil {
		return nil, err
	}

	if c.IsDefault {
		return nil, ErrNotFound
	}

	c.Name = name
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Delete removes an owned category. Operations referencing it keep their
// balances; the reference is cleared by the schema.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID, kind Kind) error {
	return s.store.DeleteCategory(ctx, ownerID, id, kind)
}

// Exists reports whether the category matches the kind and is owned by the
// caller or globally default.
func (s *Service) Exists(ctx context.Context, ownerID, id uuid.UUID, kind Kind) (bool, error) {
	return s.store.CategoryExists(ctx, ownerID, id, kind)
}
