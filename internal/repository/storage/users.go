package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
)

const userColumns = `id, email, password, name, surname, created_at`

// CreateUser inserts user. The email must be unique.
func (s *Store) CreateUser(ctx context.Context, user *account.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.Surname, user.CreatedAt.UnixMicro(),
	)

	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("user %s: %w", user.Email, ErrDuplicate)
	case err != nil:
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// UserByEmail returns the user registered with email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*account.User, error) {
	return s.user(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// UserByID returns the user with id.
func (s *Store) UserByID(ctx context.Context, id string) (*account.User, error) {
	return s.user(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// DeleteUser removes the user and all of its activities.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM activities WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete activities: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func (s *Store) user(ctx context.Context, query string, arg any) (*account.User, error) {
	var (
		user    account.User
		created int64
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Surname, &created,
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.CreatedAt = time.UnixMicro(created).UTC()

	return &user, nil
}
