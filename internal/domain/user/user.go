package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Role is the account type chosen at registration.
type Role string

// Known roles.
const (
	RoleCustomer Role = "customer"
	RoleOperator Role = "operator"
)

// Sentinel errors returned by the account service. Their messages are shown
// to users verbatim.
var (
	ErrNotFound          = errors.New("User not found")
	ErrEmailTaken        = errors.New("Email already in use")
	ErrCaptchaFailed     = errors.New("reCAPTCHA failed")
	ErrPasswordMismatch  = errors.New("Passwords do not match")
	ErrInvalidRole       = errors.New("Invalid role")
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrTooManyAttempts   = errors.New("Too many login attempts, try again later")
)

// ValidationError indicates a missing or malformed registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleOperator:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

// User is a registered storefront account.
type User struct {
	ID           string
	Role         Role
	Username     string
	Email        string
	PasswordHash string
	Contact      string
	CreatedAt    time.Time
}

// Repository defines persistence operations for accounts.
type Repository interface {
	// FindByEmail returns ErrNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	// Create returns ErrEmailTaken when the email is already registered.
	Create(ctx context.Context, u *User) error
}

// NormalizeEmail lower-cases and trims an email so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
