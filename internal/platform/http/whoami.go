package http

import (
	"net/http"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/pkg/httpx"
)

type WhoamiHandler struct{}

// WhoamiResponse echoes the caller's authorization context. Entitlements and
// capabilities are the authorization signals; flags are display-only.
type WhoamiResponse struct {
	UserID        string               `json:"user_id"`
	Role          domain.Role          `json:"role"`
	Entitlements  []domain.Entitlement `json:"entitlements"`
	Capabilities  domain.Capabilities  `json:"capabilities"`
	Flags         domain.InfoFlags     `json:"flags"`
	Impersonating bool                 `json:"impersonating"`
	ActorUserID   string               `json:"actor_user_id,omitempty"`
}

// ServeHTTP returns the caller's freshly computed authorization context.
//
//	@Summary		Who am I
//	@Description	Returns the authenticated user's entitlements, capabilities, and display flags.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	WhoamiResponse		"Authorization context"
//	@Failure		401	{object}	httpx.ErrorResponse	"Invalid or missing access token"
//	@Router			/v1/whoami [get].
func (h *WhoamiHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ac, ok := AuthFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	entitlements := ac.Grant.Entitlements
	if entitlements == nil {
		entitlements = []domain.Entitlement{}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, WhoamiResponse{
		UserID:        ac.UserID,
		Role:          ac.Role,
		Entitlements:  entitlements,
		Capabilities:  ac.Grant.Capabilities,
		Flags:         ac.Grant.Flags,
		Impersonating: ac.Impersonating,
		ActorUserID:   ac.ActorUserID,
	})
}
