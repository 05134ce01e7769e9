package flow

// View names the single active screen of the authentication experience.
// Exactly one view is active at any time; transitions are the only way to
// change it and there is no history stack.
type View int

const (
	ViewLogin View = iota
	ViewSignup
	ViewTwoFactor
	ViewForgotPasswordStep1
	ViewForgotPasswordStep2
	ViewSettings
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewSignup:
		return "signup"
	case ViewTwoFactor:
		return "two_factor"
	case ViewForgotPasswordStep1:
		return "forgot_password_step1"
	case ViewForgotPasswordStep2:
		return "forgot_password_step2"
	case ViewSettings:
		return "settings"
	default:
		return "unknown"
	}
}

// Form scopes. Each scope names one form and its inline-alert slot.
const (
	ScopeLogin    = "login"
	ScopeSignup   = "signup"
	ScopeTwoFA    = "twofa"
	ScopeForgot   = "forgot"
	ScopeForgot2  = "forgot2"
	ScopeSettings = "settings"
)

// scopesOf returns the alert scopes belonging to a view, used when clearing
// stale alerts on navigation away.
func scopesOf(v View) []string {
	switch v {
	case ViewLogin:
		return []string{ScopeLogin}
	case ViewSignup:
		return []string{ScopeSignup}
	case ViewTwoFactor:
		return []string{ScopeTwoFA}
	case ViewForgotPasswordStep1:
		return []string{ScopeForgot}
	case ViewForgotPasswordStep2:
		return []string{ScopeForgot, ScopeForgot2}
	case ViewSettings:
		return []string{ScopeSettings}
	default:
		return nil
	}
}

func inForgotFamily(v View) bool {
	return v == ViewForgotPasswordStep1 || v == ViewForgotPasswordStep2
}
