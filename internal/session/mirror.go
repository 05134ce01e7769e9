// Package session holds the client's view of who is signed in and what
// their 2FA settings are. It mirrors server truth and is refreshed after
// every authentication event; it is deliberately not persisted, so a fresh
// process starts logged out.
package session

import (
	"context"
	"log/slog"
	"sync"
)

// TwoFactorMethod is the configured second-factor delivery mechanism.
type TwoFactorMethod string

const (
	MethodEmail            TwoFactorMethod = "Email"
	MethodSMS              TwoFactorMethod = "SMS"
	MethodAuthenticatorApp TwoFactorMethod = "AuthenticatorApp"
)

// ValidMethod reports whether s names a known 2FA method.
func ValidMethod(s string) bool {
	switch TwoFactorMethod(s) {
	case MethodEmail, MethodSMS, MethodAuthenticatorApp:
		return true
	}
	return false
}

// TwoFactor is the user's second-factor configuration.
type TwoFactor struct {
	Enabled bool
	Method  TwoFactorMethod
}

// DefaultTwoFactor is the state assumed before the server has been asked.
var DefaultTwoFactor = TwoFactor{Enabled: false, Method: MethodEmail}

// SettingsFetcher loads the account's 2FA settings from the server.
// The flow controller wires this to the request gateway.
type SettingsFetcher func(ctx context.Context) (TwoFactor, error)

// Mirror is the single shared session snapshot. It is mutated only by the
// flow controller's handlers.
type Mirror struct {
	mu            sync.RWMutex
	email         string
	authenticated bool
	twoFactor     TwoFactor

	fetch  SettingsFetcher
	logger *slog.Logger
}

// NewMirror creates an empty, logged-out mirror.
func NewMirror(fetch SettingsFetcher, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		twoFactor: DefaultTwoFactor,
		fetch:     fetch,
		logger:    logger,
	}
}

// SetAuthenticated records a successful login or 2FA verification and
// refreshes the 2FA settings from the server. A refresh failure is
// non-fatal: the mirror keeps defaults and the UI proceeds.
func (m *Mirror) SetAuthenticated(ctx context.Context, email string) {
	m.mu.Lock()
	m.email = email
	m.authenticated = true
	m.mu.Unlock()

	m.RefreshSettings(ctx)
}

// Clear resets the mirror to its empty initial value.
func (m *Mirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.email = ""
	m.authenticated = false
	m.twoFactor = DefaultTwoFactor
}

// RefreshSettings reconciles the 2FA snapshot with server truth. Failures
// are logged, not surfaced; the last-known or default state stands.
func (m *Mirror) RefreshSettings(ctx context.Context) {
	if m.fetch == nil || !m.IsAuthenticated() {
		return
	}

	tf, err := m.fetch(ctx)
	if err != nil {
		m.logger.Warn("failed to load account settings", "err", err)
		return
	}

	m.mu.Lock()
	m.twoFactor = tf
	m.mu.Unlock()
}

// SetTwoFactor records a settings change the server has acknowledged.
func (m *Mirror) SetTwoFactor(tf TwoFactor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.twoFactor = tf
}

// AuthenticatedEmail implements the gateway's Identity: it reports the
// signed-in email, if any.
func (m *Mirror) AuthenticatedEmail() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.authenticated {
		return "", false
	}
	return m.email, true
}

// IsAuthenticated reports whether the mirror believes a user is signed in.
func (m *Mirror) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

// Email returns the signed-in email, or "".
func (m *Mirror) Email() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.email
}

// TwoFactor returns the current 2FA snapshot.
func (m *Mirror) TwoFactor() TwoFactor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.twoFactor
}
