package account

import (
	"strings"
	"time"
)

// User is a registered Innometrics user.
type User struct {
	// ID is a generated UUID.
	ID string
	// Email is unique and stored lower-cased.
	Email string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string
	// Name is the first name.
	Name string
	// Surname is the last name.
	Surname string
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// Registration is the data required to create a user.
type Registration struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

// Complete reports whether every registration field is set.
func (r *Registration) Complete() bool {
	return r.Email != "" && r.Password != "" && r.Name != "" && r.Surname != ""
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
