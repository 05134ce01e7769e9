package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/service"
	"github.com/quollsoft/passgate/pkg/httpx"
	"github.com/quollsoft/passgate/pkg/slogx"
)

var validate = validator.New()

// AuthHandler serves signup and the two-phase login.
type AuthHandler struct {
	AuthService    *service.AuthService
	SessionService *service.SessionService
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type signupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Requires2FA bool   `json:"requires2FA"`
}

type verify2FARequest struct {
	Email          string `json:"email" validate:"required,email"`
	LoginAttemptID string `json:"loginAttemptId" validate:"required,uuid"`
	Code           string `json:"2FACode" validate:"required"`
}

// decodeValid decodes the JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "Validation failed")
		return false
	}
	return true
}

// setSession issues the signed cookie for a signed-in user.
func setSession(w http.ResponseWriter, sessions *service.SessionService, u domain.User) error {
	token, err := sessions.Issue(u)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleLogin handles POST /login. A 200 carries a session cookie; a 206
// means the password was right but a second factor is still owed, and
// carries the loginAttemptId for it.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	result, err := h.AuthService.StartLogin(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if result.StepUp {
		httpx.WriteJSON(w, http.StatusPartialContent, map[string]string{
			"loginAttemptId": result.AttemptID,
		})
		return
	}

	if err := setSession(w, h.SessionService, result.User); err != nil {
		log.Error("failed to issue session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged in"})
}

// HandleSignup handles POST /signup.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req signupRequest
	if !decodeValid(w, r, &req) {
		return
	}

	_, err := h.AuthService.SignUp(ctx, req.Email, req.Password, req.Requires2FA)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "Email already exists")
			return
		}
		log.Error("signup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Account created"})
}

// HandleVerify2FA handles POST /verify-2fa, completing a stepped-up login.
func (h *AuthHandler) HandleVerify2FA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verify2FARequest
	if !decodeValid(w, r, &req) {
		return
	}

	u, err := h.AuthService.VerifyLogin(ctx, req.Email, req.LoginAttemptID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid code")
		case errors.Is(err, service.ErrAttemptExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "Code expired")
		case errors.Is(err, service.ErrTooManyFailures):
			httpx.WriteError(w, http.StatusUnauthorized, "Too many failed attempts")
		default:
			log.Error("2FA verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	if err := setSession(w, h.SessionService, u); err != nil {
		log.Error("failed to issue session", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged in"})
}

// HandleLogout handles POST /logout. Always succeeds for the client.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
