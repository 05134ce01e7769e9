package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/pquerna/otp/totp"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/mailer"
	"github.com/quollsoft/passgate/internal/server/store"
	"github.com/quollsoft/passgate/pkg/cryptox"
)

const (
	codeDigits      = 6
	codeTTL         = 5 * time.Minute
	maxCodeFailures = 5
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid code")
	ErrAttemptExpired     = errors.New("code expired")
	ErrTooManyFailures    = errors.New("too many failed attempts")
)

// AuthService implements signup and the two-phase login.
type AuthService struct {
	Store  store.Store
	Mailer mailer.Sender
}

// LoginResult is the outcome of the password phase. When StepUp is set
// the caller must challenge for a second factor using AttemptID.
type LoginResult struct {
	User      domain.User
	StepUp    bool
	AttemptID string
}

// SignUp registers a new account.
func (s *AuthService) SignUp(ctx context.Context, email, password string, requires2FA bool) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := domain.User{
		ID:           ulid.MustNew(ulid.Now(), rand.Reader).String(),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Requires2FA:  requires2FA,
		TwoFAMethod:  domain.MethodEmail,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return u, nil
}

// StartLogin checks the password. When the account requires a second
// factor it mints a login attempt, emails a code for the Email/SMS
// methods, and reports StepUp instead of signing the user in.
func (s *AuthService) StartLogin(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash anyway so lookups and misses take similar time.
			_, _ = cryptox.HashPassword(password)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if !u.Requires2FA {
		return LoginResult{User: u}, nil
	}

	attemptID, err := s.mintAttempt(ctx, u, domain.PurposeLogin)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{User: u, StepUp: true, AttemptID: attemptID}, nil
}

// VerifyLogin completes the second factor: the emailed code for
// Email/SMS delivery, or a TOTP code for the authenticator app.
func (s *AuthService) VerifyLogin(ctx context.Context, email, attemptID, code string) (domain.User, error) {
	u, a, err := s.loadAttempt(ctx, email, attemptID, domain.PurposeLogin)
	if err != nil {
		return domain.User{}, err
	}

	if u.TwoFAMethod == domain.MethodAuthenticatorApp {
		if !totp.Validate(strings.TrimSpace(code), u.TOTPSecret) {
			return domain.User{}, s.recordFailure(ctx, a)
		}
	} else if err := cryptox.VerifyPassword(strings.TrimSpace(code), a.CodeHash); err != nil {
		return domain.User{}, s.recordFailure(ctx, a)
	}

	if err := s.Store.Attempts().DeleteAttempt(ctx, a.ID); err != nil {
		return domain.User{}, fmt.Errorf("failed to consume attempt: %w", err)
	}
	return u, nil
}

// mintAttempt creates a pending challenge and, for emailed delivery,
// sends the code. TOTP attempts carry no code hash.
func (s *AuthService) mintAttempt(ctx context.Context, u domain.User, purpose domain.AttemptPurpose) (string, error) {
	a := domain.Attempt{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(codeTTL),
	}

	sendCode := purpose == domain.PurposeReset || u.TwoFAMethod != domain.MethodAuthenticatorApp
	var code string
	if sendCode {
		var err error
		code, err = cryptox.NumericCode(codeDigits)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		a.CodeHash, err = cryptox.HashPassword(code)
		if err != nil {
			return "", fmt.Errorf("failed to hash code: %w", err)
		}
	}

	if err := s.Store.Attempts().CreateAttempt(ctx, a); err != nil {
		return "", fmt.Errorf("failed to store attempt: %w", err)
	}

	if sendCode {
		if err := s.Mailer.SendCode(ctx, u.Email, string(purpose), code); err != nil {
			return "", fmt.Errorf("failed to send code: %w", err)
		}
	}
	return a.ID, nil
}

// loadAttempt resolves an attempt id and checks it belongs to the given
// email, serves the given purpose, and has not expired. Expired attempts
// are deleted on sight.
func (s *AuthService) loadAttempt(
	ctx context.Context,
	email, attemptID string,
	purpose domain.AttemptPurpose,
) (domain.User, domain.Attempt, error) {
	a, err := s.Store.Attempts().GetAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Attempt{}, ErrInvalidCode
		}
		return domain.User{}, domain.Attempt{}, fmt.Errorf("failed to load attempt: %w", err)
	}
	if a.Purpose != purpose {
		return domain.User{}, domain.Attempt{}, ErrInvalidCode
	}

	if a.Expired(time.Now()) {
		_ = s.Store.Attempts().DeleteAttempt(ctx, a.ID)
		return domain.User{}, domain.Attempt{}, ErrAttemptExpired
	}

	u, err := s.Store.Users().GetUserByID(ctx, a.UserID)
	if err != nil {
		return domain.User{}, domain.Attempt{}, fmt.Errorf("failed to load user: %w", err)
	}
	if u.Email != normalizeEmail(email) {
		return domain.User{}, domain.Attempt{}, ErrInvalidCode
	}
	return u, a, nil
}

// recordFailure bumps the counter and invalidates the attempt once the
// cap is hit, forcing the user back to the start of the flow.
func (s *AuthService) recordFailure(ctx context.Context, a domain.Attempt) error {
	failures, err := s.Store.Attempts().IncrementFailures(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("failed to record failure: %w", err)
	}
	if failures >= maxCodeFailures {
		_ = s.Store.Attempts().DeleteAttempt(ctx, a.ID)
		return ErrTooManyFailures
	}
	return ErrInvalidCode
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
