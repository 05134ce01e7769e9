package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/store"
)

var ErrUnknownMethod = errors.New("unknown 2FA method")

// AccountService reads and mutates per-account settings.
type AccountService struct {
	Store  store.Store
	Issuer string // TOTP issuer name shown in authenticator apps
}

// Settings is the client-visible slice of a user's account.
type Settings struct {
	Requires2FA bool
	TwoFAMethod domain.TwoFactorMethod

	// ProvisioningURL is set only on the update that switches to the
	// authenticator app; it is shown once for QR enrollment.
	ProvisioningURL string
}

// GetSettings returns the user's current 2FA settings.
func (s *AccountService) GetSettings(ctx context.Context, userID string) (Settings, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load user: %w", err)
	}
	return Settings{Requires2FA: u.Requires2FA, TwoFAMethod: u.TwoFAMethod}, nil
}

// UpdateSettings applies a 2FA settings change. Switching to the
// authenticator app provisions a fresh TOTP secret; switching away, or
// disabling 2FA entirely, discards it.
func (s *AccountService) UpdateSettings(
	ctx context.Context,
	userID string,
	requires2FA bool,
	method domain.TwoFactorMethod,
) (Settings, error) {
	if !domain.ValidMethod(string(method)) {
		return Settings{}, ErrUnknownMethod
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load user: %w", err)
	}

	out := Settings{Requires2FA: requires2FA, TwoFAMethod: method}

	secret := ""
	if requires2FA && method == domain.MethodAuthenticatorApp {
		if u.TwoFAMethod == domain.MethodAuthenticatorApp && u.TOTPSecret != "" {
			secret = u.TOTPSecret
		} else {
			key, err := totp.Generate(totp.GenerateOpts{
				Issuer:      s.Issuer,
				AccountName: u.Email,
				Period:      30,
				Digits:      otp.DigitsSix,
				Algorithm:   otp.AlgorithmSHA1,
			})
			if err != nil {
				return Settings{}, fmt.Errorf("failed to generate TOTP key: %w", err)
			}
			secret = key.Secret()
			out.ProvisioningURL = key.URL()
		}
	}

	if err := s.Store.Users().UpdateTwoFactor(ctx, userID, requires2FA, method, secret); err != nil {
		return Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return out, nil
}

// DeleteAccount permanently removes the user and all pending attempts.
func (s *AccountService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
