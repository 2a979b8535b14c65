package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/repository/storage"
)

var (
	// ErrMissingData is returned when required credentials are empty.
	ErrMissingData = errors.New("not enough data provided")
	// ErrUserExists is returned when registering a taken email.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned for unknown users.
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials is returned when the password does not match.
	ErrBadCredentials = errors.New("failed to authenticate")
	// ErrUnauthenticated is returned for missing, invalid or orphaned tokens.
	ErrUnauthenticated = errors.New("unauthorized")
)

type (
	// Repository stores users.
	Repository interface {
		CreateUser(ctx context.Context, user *account.User) error
		UserByEmail(ctx context.Context, email string) (*account.User, error)
		UserByID(ctx context.Context, id string) (*account.User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	// Hasher hashes and verifies passwords.
	Hasher interface {
		Hash(password string) (string, error)
		Verify(hash, password string) (bool, error)
	}

	// TokenIssuer issues and verifies access tokens.
	TokenIssuer interface {
		Issue(userID string) (string, error)
		Parse(token string) (string, error)
	}

	// Service implements account operations.
	Service struct {
		users     Repository
		passwords Hasher
		tokens    TokenIssuer
		now       func() time.Time
	}
)

// NewService wires a Service.
func NewService(users Repository, passwords Hasher, tokens TokenIssuer) *Service {
	return &Service{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		now:       time.Now,
	}
}

// Register creates a user. Emails are matched case-insensitively.
func (s *Service) Register(ctx context.Context, reg *account.Registration) (*account.User, error) {
	reg.Email = account.NormalizeEmail(reg.Email)
	if !reg.Complete() {
		return nil, ErrMissingData
	}

	_, err := s.users.UserByEmail(ctx, reg.Email)

	switch {
	case err == nil:
		return nil, ErrUserExists
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.passwords.Hash(reg.Password)
	if err != nil {
		return nil, err
	}

	user := &account.User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		PasswordHash: hash,
		Name:         reg.Name,
		Surname:      reg.Surname,
		CreatedAt:    s.now().UTC(),
	}

	err = s.users.CreateUser(ctx, user)

	switch {
	case errors.Is(err, storage.ErrDuplicate):
		return nil, ErrUserExists
	case err != nil:
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.InfoKV(ctx, "user registered", "user_id", user.ID)

	return user, nil
}

// Login checks credentials and returns an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = account.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrMissingData
	}

	user, err := s.users.UserByEmail(ctx, email)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "", ErrUserNotFound
	case err != nil:
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.passwords.Verify(user.PasswordHash, password)
	if err != nil {
		return "", err
	}

	if !ok {
		return "", ErrBadCredentials
	}

	return s.tokens.Issue(user.ID)
}

// Authenticate resolves token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*account.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := s.tokens.Parse(token)
	if err != nil {
		logger.DebugKV(ctx, "token rejected", "error", err)

		return nil, ErrUnauthenticated
	}

	user, err := s.users.UserByID(ctx, userID)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, ErrUnauthenticated
	case err != nil:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

// Delete removes the user and its activities.
func (s *Service) Delete(ctx context.Context, userID string) error {
	err := s.users.DeleteUser(ctx, userID)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrUserNotFound
	case err != nil:
		return fmt.Errorf("failed to delete user: %w", err)
	}

	logger.InfoKV(ctx, "user deleted", "user_id", userID)

	return nil
}
