// Package domain holds the server's core entities, free of storage and
// transport concerns.
package domain

import "time"

// TwoFactorMethod is how a second factor is delivered.
type TwoFactorMethod string

const (
	MethodEmail            TwoFactorMethod = "Email"
	MethodSMS              TwoFactorMethod = "SMS"
	MethodAuthenticatorApp TwoFactorMethod = "AuthenticatorApp"
)

// ValidMethod reports whether s is a recognized delivery method.
func ValidMethod(s string) bool {
	switch TwoFactorMethod(s) {
	case MethodEmail, MethodSMS, MethodAuthenticatorApp:
		return true
	}
	return false
}

// User is a registered account.
type User struct {
	ID           string // ULID
	Email        string
	PasswordHash string // argon2id PHC string
	Requires2FA  bool
	TwoFAMethod  TwoFactorMethod
	TOTPSecret   string // set only while TwoFAMethod is AuthenticatorApp
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AttemptPurpose distinguishes what a pending attempt unlocks.
type AttemptPurpose string

const (
	PurposeLogin AttemptPurpose = "login"
	PurposeReset AttemptPurpose = "reset"
)

// Attempt is a pending challenge: a login waiting for its second factor,
// or a password reset waiting for its emailed code. The ID is the opaque
// token the client echoes back.
type Attempt struct {
	ID        string // UUID
	UserID    string
	Purpose   AttemptPurpose
	CodeHash  string // argon2id of the emailed code; empty for TOTP
	Failures  int
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the attempt is past its deadline.
func (a Attempt) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}
