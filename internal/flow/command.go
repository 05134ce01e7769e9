package flow

import "github.com/quollsoft/passgate/internal/session"

// Command is the closed set of user actions the controller understands.
// Submissions read their input values from the controller-owned forms;
// commands carry only what the triggering control itself knows.
type Command interface {
	isCommand()
}

// LoginSubmitted submits the login form.
type LoginSubmitted struct{}

// SignupSubmitted submits the signup form.
type SignupSubmitted struct{}

// TwoFactorSubmitted submits the 2FA verification form, using the email and
// attempt id stashed there by the login step.
type TwoFactorSubmitted struct{}

// ForgotPasswordSubmitted submits step 1 of password recovery.
type ForgotPasswordSubmitted struct{}

// PasswordResetSubmitted submits step 2 of password recovery.
type PasswordResetSubmitted struct{}

// TwoFactorToggled asks to enable or disable 2FA. Confirmed carries the
// user's answer to the confirmation prompt; an unconfirmed toggle is a no-op
// and the control reverts.
type TwoFactorToggled struct {
	Enable    bool
	Method    session.TwoFactorMethod
	Confirmed bool
}

// TwoFactorMethodChanged selects a different second-factor delivery method.
// Only honored while 2FA is enabled.
type TwoFactorMethodChanged struct {
	Method session.TwoFactorMethod
}

// AccountDeleteRequested asks for permanent account deletion. Confirmation
// must equal the literal "DELETE" or nothing happens.
type AccountDeleteRequested struct {
	Confirmation string
}

// LogoutRequested signs the user out.
type LogoutRequested struct{}

// NavigatedTo follows a navigation link. No network call; stale inline
// alerts of the views being left are cleared.
type NavigatedTo struct {
	View View
}

func (LoginSubmitted) isCommand()          {}
func (SignupSubmitted) isCommand()         {}
func (TwoFactorSubmitted) isCommand()      {}
func (ForgotPasswordSubmitted) isCommand() {}
func (PasswordResetSubmitted) isCommand()  {}
func (TwoFactorToggled) isCommand()        {}
func (TwoFactorMethodChanged) isCommand()  {}
func (AccountDeleteRequested) isCommand()  {}
func (LogoutRequested) isCommand()         {}
func (NavigatedTo) isCommand()             {}
