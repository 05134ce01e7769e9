package http

import (
	"errors"
	"net/http"

	"github.com/quollsoft/passgate/internal/server/service"
	"github.com/quollsoft/passgate/pkg/httpx"
	"github.com/quollsoft/passgate/pkg/slogx"
)

// PasswordHandler serves the two-step recovery flow.
type PasswordHandler struct {
	PasswordService *service.PasswordService
}

type forgotRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetRequest struct {
	Email          string `json:"email" validate:"required,email"`
	LoginAttemptID string `json:"loginAttemptId" validate:"required,uuid"`
	Code           string `json:"code" validate:"required"`
	NewPassword    string `json:"new_password" validate:"required,min=8"`
}

// HandleForgot handles POST /forgot-password. The response is identical
// for known and unknown emails.
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotRequest
	if !decodeValid(w, r, &req) {
		return
	}

	attemptID, err := h.PasswordService.StartReset(ctx, req.Email)
	if err != nil {
		log.Error("failed to start password reset", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"loginAttemptId": attemptID})
}

// HandleReset handles POST /reset-password.
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetRequest
	if !decodeValid(w, r, &req) {
		return
	}

	err := h.PasswordService.CompleteReset(ctx, req.Email, req.LoginAttemptID, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid code")
		case errors.Is(err, service.ErrAttemptExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "Code expired")
		case errors.Is(err, service.ErrTooManyFailures):
			httpx.WriteError(w, http.StatusUnauthorized, "Too many failed attempts")
		default:
			log.Error("password reset failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
