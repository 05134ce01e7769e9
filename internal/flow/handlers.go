package flow

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/quollsoft/passgate/internal/forms"
	"github.com/quollsoft/passgate/internal/notify"
	"github.com/quollsoft/passgate/internal/session"
	"github.com/quollsoft/passgate/internal/validate"
	"github.com/quollsoft/passgate/pkg/authgw"
)

// deleteConfirmation is the literal a user must type before account
// deletion proceeds.
const deleteConfirmation = "DELETE"

// begin runs the submit prologue: validate the form, focus the first
// invalid field on failure, then acquire the in-flight guard so a second
// submission of the same form is rejected while this one is pending.
// The caller must fm.End() when begin returns true.
func (c *Controller) begin(fm *forms.Form) bool {
	ok, first := validate.Form(fm)
	if !ok {
		c.setFocus(first)
		return false
	}
	c.setFocus(nil)

	if !fm.Begin() {
		c.logger.Debug("submission already in flight", "form", fm.Name)
		return false
	}

	c.notify.ClearAlert(fm.Name)
	return true
}

// dropStale logs and reports a response that arrived after the user
// navigated off the view that issued it.
func (c *Controller) dropStale(gen uint64, action string) bool {
	if c.stillCurrent(gen) {
		return false
	}
	c.logger.Warn("dropping stale response", "action", action, "view", c.View().String())
	return true
}

func (c *Controller) handleLogin(ctx context.Context) {
	fm := c.forms[ScopeLogin]
	if !c.begin(fm) {
		return
	}
	defer fm.End()

	email := strings.TrimSpace(fm.Get("email"))
	gen := c.generation()

	resp, err := c.gw.Send(ctx, http.MethodPost, "/login", map[string]any{
		"email":    email,
		"password": fm.Get("password"),
	}, nil)

	if c.dropStale(gen, "login") {
		return
	}
	if err != nil {
		// Prefer the server's own wording; a bodyless 401 gets the stock
		// login message instead of the gateway's generic one.
		msg := err.Error()
		var he *authgw.HTTPError
		if errors.As(err, &he) && he.Status == http.StatusUnauthorized && he.Generic {
			msg = "Invalid credentials"
		}
		c.notify.Alert(ScopeLogin, msg)
		return
	}

	if resp.StepUpRequired() {
		attemptID := resp.String("loginAttemptId")
		if attemptID == "" {
			attemptID = resp.String("login_attempt_id")
		}

		// The attempt id is only meaningful together with the email it was
		// issued for; stash both into the 2FA form.
		twofa := c.forms[ScopeTwoFA]
		twofa.Reset()
		twofa.Set("email", email)
		twofa.Set("login_attempt_id", attemptID)

		fm.Reset()
		c.setView(ViewTwoFactor)
		c.notify.Toast(notify.SeverityWarning, "2FA Required", "Check your email for the verification code")
		return
	}

	fm.Reset()
	c.sess.SetAuthenticated(ctx, email)
	c.notify.Toast(notify.SeveritySuccess, "Welcome!", "You have successfully signed in")
	c.setView(ViewSettings)
}

func (c *Controller) handleSignup(ctx context.Context) {
	fm := c.forms[ScopeSignup]
	if !c.begin(fm) {
		return
	}
	defer fm.End()

	gen := c.generation()
	_, err := c.gw.Send(ctx, http.MethodPost, "/signup", map[string]any{
		"email":       strings.TrimSpace(fm.Get("email")),
		"password":    fm.Get("password"),
		"requires2FA": fm.Get("twoFA") == "on",
	}, nil)

	if c.dropStale(gen, "signup") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeSignup, err.Error())
		return
	}

	fm.Reset()
	c.notify.Toast(notify.SeveritySuccess, "Account Created!", "Please sign in with your new account")
	c.setView(ViewLogin)
}

func (c *Controller) handleTwoFactor(ctx context.Context) {
	fm := c.forms[ScopeTwoFA]
	if !c.begin(fm) {
		return
	}
	defer fm.End()

	email := fm.Get("email")
	gen := c.generation()

	_, err := c.gw.Send(ctx, http.MethodPost, "/verify-2fa", map[string]any{
		"email":          email,
		"loginAttemptId": fm.Get("login_attempt_id"),
		"2FACode":        strings.TrimSpace(fm.Get("code")),
	}, nil)

	if c.dropStale(gen, "verify-2fa") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeTwoFA, err.Error())
		return
	}

	fm.Reset()
	c.sess.SetAuthenticated(ctx, email)
	c.notify.Toast(notify.SeveritySuccess, "Success!", "You have been logged in")
	c.setView(ViewSettings)
}

func (c *Controller) handleForgotPassword(ctx context.Context) {
	fm := c.forms[ScopeForgot]
	if !c.begin(fm) {
		return
	}
	defer fm.End()

	email := strings.TrimSpace(fm.Get("email"))
	gen := c.generation()

	resp, err := c.gw.Send(ctx, http.MethodPost, "/forgot-password", map[string]any{
		"email": email,
	}, nil)

	if c.dropStale(gen, "forgot-password") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeForgot, err.Error())
		return
	}

	attemptID := resp.String("loginAttemptId")
	if attemptID == "" {
		attemptID = resp.String("login_attempt_id")
	}

	step2 := c.forms[ScopeForgot2]
	step2.Reset()
	step2.Set("email", email)
	step2.Set("login_attempt_id", attemptID)

	c.setView(ViewForgotPasswordStep2)
	c.notify.Toast(notify.SeveritySuccess, "Reset Code Sent", "Check your email for the reset code")
}

func (c *Controller) handlePasswordReset(ctx context.Context) {
	fm := c.forms[ScopeForgot2]
	if !c.begin(fm) {
		return
	}
	defer fm.End()

	gen := c.generation()
	_, err := c.gw.Send(ctx, http.MethodPost, "/reset-password", map[string]any{
		"email":          fm.Get("email"),
		"loginAttemptId": fm.Get("login_attempt_id"),
		"code":           strings.TrimSpace(fm.Get("code")),
		"new_password":   fm.Get("new_password"),
	}, nil)

	if c.dropStale(gen, "reset-password") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeForgot2, err.Error())
		return
	}

	c.notify.Toast(notify.SeveritySuccess, "Password Reset!", "You can now sign in with your new password")
	c.resetForgotForms()
	c.setView(ViewLogin)
}

func (c *Controller) handleTwoFactorToggled(ctx context.Context, cmd TwoFactorToggled) {
	if !cmd.Confirmed {
		// Declined prompt: nothing was sent, the control reverts on its own.
		return
	}

	method := cmd.Method
	if !session.ValidMethod(string(method)) {
		method = c.sess.TwoFactor().Method
	}

	c.updateSettings(ctx, session.TwoFactor{Enabled: cmd.Enable, Method: method}, func() {
		state := "disabled"
		if cmd.Enable {
			state = "enabled"
		}
		c.notify.Toast(notify.SeveritySuccess, "Settings Updated", "2FA "+state)
	})
}

func (c *Controller) handleTwoFactorMethodChanged(ctx context.Context, cmd TwoFactorMethodChanged) {
	if !c.sess.TwoFactor().Enabled {
		c.logger.Debug("ignoring method change while 2FA is disabled")
		return
	}
	if !session.ValidMethod(string(cmd.Method)) {
		return
	}

	c.updateSettings(ctx, session.TwoFactor{Enabled: true, Method: cmd.Method}, func() {
		c.notify.Toast(notify.SeveritySuccess, "Settings Updated", "2FA method set to "+string(cmd.Method))
	})
}

// updateSettings PATCHes the account's 2FA settings and reconciles the
// mirror on success. On failure the mirror is left untouched, which is what
// reverts the control.
func (c *Controller) updateSettings(ctx context.Context, tf session.TwoFactor, onSuccess func()) {
	fm := c.forms[ScopeSettings]
	if !fm.Begin() {
		return
	}
	defer fm.End()

	c.notify.ClearAlert(ScopeSettings)
	gen := c.generation()

	_, err := c.gw.Send(ctx, http.MethodPatch, "/account/settings", map[string]any{
		"requires2FA": tf.Enabled,
		"twoFAMethod": string(tf.Method),
	}, nil)

	if c.dropStale(gen, "update-settings") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeSettings, err.Error())
		return
	}

	c.sess.SetTwoFactor(tf)
	onSuccess()
}

func (c *Controller) handleDeleteAccount(ctx context.Context, cmd AccountDeleteRequested) {
	if cmd.Confirmation != deleteConfirmation {
		// Anything but the exact literal aborts with no network call.
		return
	}

	fm := c.forms[ScopeSettings]
	if !fm.Begin() {
		return
	}
	defer fm.End()

	c.notify.ClearAlert(ScopeSettings)
	gen := c.generation()

	_, err := c.gw.Send(ctx, http.MethodDelete, "/delete-account", nil, nil)

	if c.dropStale(gen, "delete-account") {
		return
	}
	if err != nil {
		c.notify.Alert(ScopeSettings, err.Error())
		return
	}

	c.notify.Toast(notify.SeveritySuccess, "Account Deleted", "Your account has been permanently deleted")
	c.logout(ctx, false)
}

// logout posts /logout best-effort and clears the client session
// regardless; server-side failure must never strand the client signed in.
func (c *Controller) logout(ctx context.Context, announce bool) {
	c.mu.Lock()
	if c.loggingOut {
		c.mu.Unlock()
		return
	}
	c.loggingOut = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loggingOut = false
		c.mu.Unlock()
	}()

	if _, err := c.gw.Send(ctx, http.MethodPost, "/logout", nil, nil); err != nil {
		c.logger.Warn("logout request failed", "err", err)
	}

	c.sess.Clear()
	c.notify.ClearAlert(ScopeSettings)
	c.setView(ViewLogin)

	if announce {
		c.notify.Toast(notify.SeveritySuccess, "Signed Out", "You have been successfully signed out")
	}
}

func (c *Controller) handleNavigate(target View) {
	if target == ViewSettings && !c.sess.IsAuthenticated() {
		c.logger.Debug("ignoring navigation to settings while logged out")
		return
	}

	current := c.View()
	for _, scope := range scopesOf(current) {
		c.notify.ClearAlert(scope)
	}

	// Leaving the forgot-password family, or re-entering it from outside,
	// discards the stashed attempt and resets both steps.
	if inForgotFamily(current) != inForgotFamily(target) || target == ViewForgotPasswordStep1 {
		c.resetForgotForms()
	}

	c.setView(target)
}

func (c *Controller) resetForgotForms() {
	c.notify.ClearAlert(ScopeForgot)
	c.notify.ClearAlert(ScopeForgot2)
	c.forms[ScopeForgot].Reset()
	c.forms[ScopeForgot2].Reset()
}
