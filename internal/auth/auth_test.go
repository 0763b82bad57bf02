package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/expenso/internal/auth"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)

	ok, err := auth.VerifyPassword(encoded, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyPassword(encoded, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := auth.HashPassword("secret")
	require.NoError(t, err)

	second, err := auth.HashPassword("secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{"", "not-a-hash", "abc$def", "x$y$z$w", "0$AAAA$AAAA"} {
		_, err := auth.VerifyPassword(encoded, "secret")
		assert.ErrorIs(t, err, auth.ErrMalformedHash, "hash %q", encoded)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Issue(userID)
	require.NoError(t, err)

	parsed, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestTokenParse_Invalid(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", time.Hour)

	t.Run("Garbage", func(t *testing.T) {
		_, err := manager.Parse("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := auth.NewTokenManager("other-secret", time.Hour)

		token, err := other.Issue(uuid.New())
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := auth.NewTokenManager("test-secret", -time.Minute)

		token, err := expired.Issue(uuid.New())
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
