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

type ImpersonateHandler struct {
	TokenService *service.TokenService
	UserService  *service.UserService
}

type impersonateRequest struct {
	TargetUserID string `json:"target_user_id"`
}

// ImpersonationResponse is returned when impersonation starts. There is no
// refresh token; the session lives exactly one access-token lifetime.
type ImpersonationResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// HandleStart mints an impersonation token for the target user.
//
//	@Summary		Start impersonating a user
//	@Description	Mints an access-only token whose subject is the target user, recording the real actor. Root admin only.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		impersonateRequest		true	"Target user"
//	@Success		200		{object}	ImpersonationResponse	"Impersonation token"
//	@Failure		400		{object}	httpx.ErrorResponse		"Malformed request or self-impersonation"
//	@Failure		403		{object}	httpx.ErrorResponse		"Caller is not a root admin"
//	@Failure		404		{object}	httpx.ErrorResponse		"Target not found"
//	@Router			/v1/auth/impersonate [post].
func (h *ImpersonateHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req impersonateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetUserID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "target_user_id required")
		return
	}
	if req.TargetUserID == ac.UserID {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "cannot impersonate yourself")
		return
	}

	target, err := h.UserService.GetUser(ctx, req.TargetUserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "target user not found")
			return
		}
		slogx.FromContext(ctx).Error("impersonation target load failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	token, err := h.TokenService.IssueImpersonation(ac.UserID, target.ID)
	if err != nil {
		slogx.FromContext(ctx).Error("impersonation token mint failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	slogx.FromContext(ctx).Warn("impersonation started",
		"actor_user_id", ac.UserID, "target_user_id", target.ID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, ImpersonationResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   int64(token.AccessTTL.Seconds()),
	})
}

// HandleExit ends an impersonation session by minting an ordinary pair for
// the original actor.
//
//	@Summary		Exit an impersonation session
//	@Description	Returns a normal access/refresh pair for the actor behind the impersonation token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	TokenPairResponse	"Token pair for the actor"
//	@Failure		403	{object}	httpx.ErrorResponse	"Not an impersonation session"
//	@Router			/v1/auth/impersonate/exit [post].
func (h *ImpersonateHandler) HandleExit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok || !ac.Impersonating || ac.ActorUserID == "" {
		httpx.WriteError(w, http.StatusForbidden, "not_impersonating", "impersonation session required")
		return
	}

	pair, err := h.TokenService.Issue(ac.ActorUserID)
	if err != nil {
		slogx.FromContext(ctx).Error("impersonation exit mint failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	slogx.FromContext(ctx).Info("impersonation ended",
		"actor_user_id", ac.ActorUserID, "target_user_id", ac.UserID)

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, tokenPairResponse(pair))
}
