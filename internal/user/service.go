package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/expenso/internal/auth"
)

//go:generate mockgen -source=service.go -destination=store_mock.go -package=user
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates a user with a freshly hashed password. Emails are
// normalized to lower case so the uniqueness check is case insensitive.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return u, nil
}

// Authenticate returns the user matching the credentials. A missing user and
// a wrong password come back as the same error so callers cannot probe which
// emails are registered.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("fetching user: %w", err)
	}

	ok, err := auth.VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetUser(ctx, id)
}

// Delete removes the user together with their accounts, categories, and
// operations, which cascade from the user row.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteUser(ctx, id)
}
