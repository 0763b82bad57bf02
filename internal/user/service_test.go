package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/expenso/internal/auth"
	"github.com/MrJamesThe3rd/expenso/internal/user"
)

func TestService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := user.NewMockStore(ctrl)
	svc := user.NewService(store)

	var created *user.User

	store.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			created = u
			return nil
		})

	u, err := svc.Register(context.Background(), "  Someone@Example.COM ", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, "someone@example.com", u.Email)
	assert.Same(t, created, u)

	// The stored hash is a real hash of the password, not the password itself.
	ok, err := auth.VerifyPassword(u.PasswordHash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestService_Register_EmailTaken(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := user.NewMockStore(ctrl)
	svc := user.NewService(store)

	store.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)

	_, err := svc.Register(context.Background(), "someone@example.com", "hunter22")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestService_Authenticate(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	existing := &user.User{Email: "someone@example.com", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := user.NewMockStore(ctrl)
		svc := user.NewService(store)

		store.EXPECT().GetUserByEmail(gomock.Any(), "someone@example.com").Return(existing, nil)

		u, err := svc.Authenticate(context.Background(), "Someone@Example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, existing, u)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := user.NewMockStore(ctrl)
		svc := user.NewService(store)

		store.EXPECT().GetUserByEmail(gomock.Any(), "someone@example.com").Return(existing, nil)

		_, err := svc.Authenticate(context.Background(), "someone@example.com", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := user.NewMockStore(ctrl)
		svc := user.NewService(store)

		store.EXPECT().GetUserByEmail(gomock.Any(), "nobody@example.com").Return(nil, user.ErrNotFound)

		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "hunter22")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}
