package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// TestPasswords verifies hashing and comparison.
func TestPasswords(t *testing.T) {
	t.Parallel()

	passwords := NewPasswords(bcrypt.MinCost)

	hash, err := passwords.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	ok, err := passwords.Verify(hash, "s3cret")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = passwords.Verify(hash, "wrong")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = passwords.Verify("not-a-hash", "s3cret")
	require.Error(t, err)
}

// TestTokensRoundTrip verifies the subject survives signing.
func TestTokensRoundTrip(t *testing.T) {
	t.Parallel()

	tokens, err := NewTokens("key", time.Hour)
	require.NoError(t, err)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	subject, err := tokens.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", subject)
}

// TestTokensRejected covers expiry, foreign keys and garbage.
func TestTokensRejected(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-31 * 24 * time.Hour)

	old, err := NewTokens("key", 30*24*time.Hour, WithClock(func() time.Time { return past }))
	require.NoError(t, err)

	expired, err := old.Issue("user-1")
	require.NoError(t, err)

	current, err := NewTokens("key", time.Hour)
	require.NoError(t, err)

	_, err = current.Parse(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewTokens("other-key", time.Hour)
	require.NoError(t, err)

	forged, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = current.Parse(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = current.Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokens("", time.Hour)
	require.ErrorIs(t, err, ErrEmptySecret)
}
