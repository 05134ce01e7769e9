package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/mailer"
	"github.com/quollsoft/passgate/internal/server/store"
	"github.com/quollsoft/passgate/pkg/cryptox"
)

// PasswordService implements the two-step password recovery flow.
type PasswordService struct {
	Store  store.Store
	Mailer mailer.Sender
	Auth   *AuthService
}

// StartReset mints a reset attempt and emails its code. Unknown emails
// still get a syntactically valid attempt id so the response gives no
// hint whether the account exists.
func (s *PasswordService) StartReset(ctx context.Context, email string) (string, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return uuid.NewString(), nil
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	return s.Auth.mintAttempt(ctx, u, domain.PurposeReset)
}

// CompleteReset verifies the emailed code and sets the new password.
// All pending attempts for the user die with the old password.
func (s *PasswordService) CompleteReset(ctx context.Context, email, attemptID, code, newPassword string) error {
	u, a, err := s.Auth.loadAttempt(ctx, email, attemptID, domain.PurposeReset)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(code, a.CodeHash); err != nil {
		return s.Auth.recordFailure(ctx, a)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.Store.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	_ = s.Store.Attempts().DeleteAttempt(ctx, a.ID)
	return nil
}
