package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/httpx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

type PasswordHandler struct {
	UserService *service.UserService
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ServeHTTP rotates the authenticated user's own password.
//
//	@Summary		Change the session user's password
//	@Description	Verifies the current password and replaces it with a new one. Impersonation sessions may not change the target's credentials.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	changePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure		401		{object}	httpx.ErrorResponse	"Current password incorrect"
//	@Failure		403		{object}	httpx.ErrorResponse	"Impersonating session"
//	@Security		BearerAuth
//	@Router			/v1/auth/password [put].
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "authentication required")
		return
	}
	if ac.Impersonating {
		httpx.WriteError(w, http.StatusForbidden, "impersonating", "impersonation sessions cannot change passwords")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "current_password and new_password required")
		return
	}

	err := h.UserService.ChangePassword(ctx, ac.UserID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "current password incorrect")
		return
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "user not found")
		return
	case err != nil:
		slogx.FromContext(ctx).Error("password change failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
