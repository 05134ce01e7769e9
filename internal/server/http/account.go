package http

import (
	"errors"
	"net/http"

	"github.com/quollsoft/passgate/internal/server/domain"
	"github.com/quollsoft/passgate/internal/server/service"
	"github.com/quollsoft/passgate/pkg/httpx"
	"github.com/quollsoft/passgate/pkg/slogx"
)

// AccountHandler serves the authenticated account endpoints.
type AccountHandler struct {
	AccountService *service.AccountService
	SessionService *service.SessionService
}

type updateSettingsRequest struct {
	Requires2FA bool   `json:"requires2FA"`
	TwoFAMethod string `json:"twoFAMethod" validate:"required"`
}

type settingsResponse struct {
	Requires2FA     bool   `json:"requires2FA"`
	TwoFAMethod     string `json:"twoFAMethod"`
	ProvisioningURL string `json:"provisioningUrl,omitempty"`
}

// HandleGetSettings handles GET /account/settings.
func (h *AccountHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := userIDFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	settings, err := h.AccountService.GetSettings(ctx, userID)
	if err != nil {
		log.Error("failed to load settings", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, settingsResponse{
		Requires2FA: settings.Requires2FA,
		TwoFAMethod: string(settings.TwoFAMethod),
	})
}

// HandleUpdateSettings handles PATCH /account/settings. Switching to the
// authenticator app returns a one-time provisioning URL for QR enrollment.
func (h *AccountHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := userIDFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req updateSettingsRequest
	if !decodeValid(w, r, &req) {
		return
	}

	settings, err := h.AccountService.UpdateSettings(
		ctx, userID, req.Requires2FA, domain.TwoFactorMethod(req.TwoFAMethod))
	if err != nil {
		if errors.Is(err, service.ErrUnknownMethod) {
			httpx.WriteError(w, http.StatusUnprocessableEntity, "Unknown 2FA method")
			return
		}
		log.Error("failed to update settings", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, settingsResponse{
		Requires2FA:     settings.Requires2FA,
		TwoFAMethod:     string(settings.TwoFAMethod),
		ProvisioningURL: settings.ProvisioningURL,
	})
}

// HandleDelete handles DELETE /delete-account. The session cookie dies
// with the account.
func (h *AccountHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := userIDFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.AccountService.DeleteAccount(ctx, userID); err != nil {
		log.Error("failed to delete account", "user_id", userID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	clearSession(w)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
