package store

import (
	"context"
	"errors"

	"github.com/quollsoft/passgate/internal/server/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for
// now) implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Attempts() Attempts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by the email they sign in with.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// UpdateTwoFactor sets requires_2fa, twofa_method and totp_secret.
	UpdateTwoFactor(ctx context.Context, userID string, requires bool, method domain.TwoFactorMethod, totpSecret string) error

	// DeleteUser cascades to attempts (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

type Attempts interface {
	// CreateAttempt stores a pending login or reset challenge.
	CreateAttempt(ctx context.Context, a domain.Attempt) error

	// GetAttempt fetches an attempt by id.
	GetAttempt(ctx context.Context, id string) (domain.Attempt, error)

	// IncrementFailures bumps the failure counter and returns the new count.
	IncrementFailures(ctx context.Context, id string) (int, error)

	// DeleteAttempt removes a consumed or abandoned attempt.
	DeleteAttempt(ctx context.Context, id string) error

	// DeleteExpiredAttempts is housekeeping.
	DeleteExpiredAttempts(ctx context.Context) error
}
