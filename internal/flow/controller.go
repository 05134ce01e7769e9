// Package flow implements the authentication flow controller: a state
// machine that owns the active view and sequences validation, request and
// transition for every user action.
package flow

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/quollsoft/passgate/internal/forms"
	"github.com/quollsoft/passgate/internal/notify"
	"github.com/quollsoft/passgate/internal/session"
	"github.com/quollsoft/passgate/pkg/authgw"
)

const defaultProbeInterval = 5 * time.Minute

// Config wires the controller's collaborators.
type Config struct {
	Gateway *authgw.Client
	Notify  *notify.Center
	Logger  *slog.Logger

	// ProbeInterval is how often the controller re-checks an authenticated
	// session against the server. Zero means the 5 minute default.
	ProbeInterval time.Duration
}

// Controller owns the current view, the session mirror and the forms, and
// is the sole mutator of all three.
type Controller struct {
	gw     *authgw.Client
	notify *notify.Center
	logger *slog.Logger

	sess          *session.Mirror
	probeInterval time.Duration

	mu      sync.Mutex
	view    View
	viewGen uint64
	focused *forms.Field
	forms   map[string]*forms.Form

	loggingOut bool
}

// New builds a controller starting at the login view with an empty session.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.ProbeInterval
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	c := &Controller{
		gw:            cfg.Gateway,
		notify:        cfg.Notify,
		logger:        logger,
		probeInterval: interval,
		view:          ViewLogin,
		forms:         buildForms(),
	}

	c.sess = session.NewMirror(c.fetchSettings, logger)
	c.gw.Identity = c.sess
	c.gw.OnAuthRequired = c.onAuthRequired
	return c
}

func buildForms() map[string]*forms.Form {
	email := func() *forms.Field { return forms.NewField("email", forms.KindEmail) }
	password := func() *forms.Field { return forms.NewField("password", forms.KindPassword) }

	signup2FA := forms.NewField("twoFA", forms.KindText)
	signup2FA.Required = false

	attempt := func() *forms.Field {
		f := forms.NewField("login_attempt_id", forms.KindText)
		f.Label = "Login attempt"
		return f
	}

	code := forms.NewField("code", forms.KindText)
	code.Label = "Code"

	resetCode := forms.NewField("code", forms.KindText)
	resetCode.Label = "Reset code"

	newPassword := forms.NewField("new_password", forms.KindPassword)
	newPassword.Label = "New password"

	return map[string]*forms.Form{
		ScopeLogin:    forms.New(ScopeLogin, email(), password()),
		ScopeSignup:   forms.New(ScopeSignup, email(), password(), signup2FA),
		ScopeTwoFA:    forms.New(ScopeTwoFA, email(), attempt(), code),
		ScopeForgot:   forms.New(ScopeForgot, email()),
		ScopeForgot2:  forms.New(ScopeForgot2, email(), attempt(), resetCode, newPassword),
		ScopeSettings: forms.New(ScopeSettings),
	}
}

// View returns the currently active view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Session exposes the session mirror for read access.
func (c *Controller) Session() *session.Mirror { return c.sess }

// Form returns the form for a scope.
func (c *Controller) Form(scope string) *forms.Form { return c.forms[scope] }

// SetField writes a value into a form field, simulating user input.
// Typing into a form dismisses its inline alert.
func (c *Controller) SetField(scope, field, value string) {
	if fm := c.forms[scope]; fm != nil {
		fm.Set(field, value)
		c.notify.ClearAlert(scope)
	}
}

// FocusedField returns the field that should receive focus after the last
// failed validation, or nil.
func (c *Controller) FocusedField() *forms.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// Dispatch routes a command to its handler. All outcomes, including
// gateway errors, are fully handled here; nothing propagates to the caller.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) {
	switch cmd := cmd.(type) {
	case LoginSubmitted:
		c.handleLogin(ctx)
	case SignupSubmitted:
		c.handleSignup(ctx)
	case TwoFactorSubmitted:
		c.handleTwoFactor(ctx)
	case ForgotPasswordSubmitted:
		c.handleForgotPassword(ctx)
	case PasswordResetSubmitted:
		c.handlePasswordReset(ctx)
	case TwoFactorToggled:
		c.handleTwoFactorToggled(ctx, cmd)
	case TwoFactorMethodChanged:
		c.handleTwoFactorMethodChanged(ctx, cmd)
	case AccountDeleteRequested:
		c.handleDeleteAccount(ctx, cmd)
	case LogoutRequested:
		c.logout(ctx, true)
	case NavigatedTo:
		c.handleNavigate(cmd.View)
	}
}

// setView activates a view and bumps the generation counter that guards
// stale async completions.
func (c *Controller) setView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = v
	c.viewGen++
}

func (c *Controller) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewGen
}

// stillCurrent reports whether no view transition happened since the
// snapshot was taken. Handlers drop their response's effects when the user
// has navigated off the originating view meanwhile.
func (c *Controller) stillCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewGen == gen
}

func (c *Controller) setFocus(f *forms.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focused = f
}

// fetchSettings is the session mirror's settings loader.
func (c *Controller) fetchSettings(ctx context.Context) (session.TwoFactor, error) {
	resp, err := c.gw.Send(ctx, http.MethodGet, "/account/settings", nil, nil)
	if err != nil {
		return session.TwoFactor{}, err
	}

	tf := session.TwoFactor{
		Enabled: resp.Bool("requires2FA"),
		Method:  session.MethodEmail,
	}
	if m := resp.String("twoFAMethod"); session.ValidMethod(m) {
		tf.Method = session.TwoFactorMethod(m)
	}
	return tf, nil
}

// onAuthRequired is the gateway's 401 hook: the server no longer honors a
// session we believed valid.
func (c *Controller) onAuthRequired() {
	c.mu.Lock()
	busy := c.loggingOut
	c.mu.Unlock()
	if busy {
		// Already tearing the session down; the /logout call itself may 401.
		return
	}

	c.notify.Toast(notify.SeverityWarning, "Session Expired", "Please sign in again")
	c.logout(context.Background(), false)
}
