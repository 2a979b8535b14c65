package account

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/innometrics/innometrics-backend/internal/auth"
	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/repository/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()

	store, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "innometrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tokens, err := auth.NewTokens("secret", time.Hour)
	require.NoError(t, err)

	return NewService(store, auth.NewPasswords(bcrypt.MinCost), tokens)
}

func registration() *account.Registration {
	return &account.Registration{
		Email:    "Ivan@Innometrics.guru",
		Password: "s3cret",
		Name:     "Ivan",
		Surname:  "Ivanov",
	}
}

// TestRegisterAndLogin covers the happy path and token resolution.
func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)

	user, err := svc.Register(ctx, registration())
	require.NoError(t, err)
	require.Equal(t, "ivan@innometrics.guru", user.Email)
	require.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := svc.Login(ctx, "IVAN@innometrics.guru", "s3cret")
	require.NoError(t, err)

	resolved, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

// TestRegisterErrors covers missing data and duplicates.
func TestRegisterErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)

	incomplete := registration()
	incomplete.Name = ""
	_, err := svc.Register(ctx, incomplete)
	require.ErrorIs(t, err, ErrMissingData)

	_, err = svc.Register(ctx, registration())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registration())
	require.ErrorIs(t, err, ErrUserExists)
}

// TestLoginErrors covers every rejected login.
func TestLoginErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "", "s3cret")
	require.ErrorIs(t, err, ErrMissingData)

	_, err = svc.Login(ctx, "nobody@innometrics.guru", "s3cret")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(ctx, "ivan@innometrics.guru", "wrong")
	require.ErrorIs(t, err, ErrBadCredentials)
}

// TestDeleteInvalidatesToken ensures tokens of deleted users are rejected.
func TestDeleteInvalidatesToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newService(t)

	user, err := svc.Register(ctx, registration())
	require.NoError(t, err)

	token, err := svc.Login(ctx, "ivan@innometrics.guru", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user.ID))
	require.ErrorIs(t, svc.Delete(ctx, user.ID), ErrUserNotFound)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.Authenticate(ctx, "")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
