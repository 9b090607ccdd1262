package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/httpx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

type AdminUsersHandler struct {
	UserService *service.UserService
}

// UserResponse is the admin-facing view of a user record. The password hash
// never leaves the service.
type UserResponse struct {
	ID            string      `json:"id"`
	Username      string      `json:"username"`
	PreferredName string      `json:"preferred_name"`
	Role          domain.Role `json:"role"`
	IsActive      bool        `json:"is_active"`
	IsAdmin       bool        `json:"is_admin"`
	IsRootAdmin   bool        `json:"is_root_admin"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		PreferredName: u.PreferredName,
		Role:          u.Role,
		IsActive:      u.IsActive,
		IsAdmin:       u.IsAdmin,
		IsRootAdmin:   u.IsRootAdmin,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// HandleList returns all users.
//
//	@Summary		List users
//	@Description	Returns every user record. Root admin only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		UserResponse		"Users"
//	@Failure		403	{object}	httpx.ErrorResponse	"Caller is not a root admin"
//	@Router			/v1/admin/users [get].
func (h *AdminUsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("user list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Username      string      `json:"username"`
	PreferredName string      `json:"preferred_name"`
	Password      string      `json:"password"`
	Role          domain.Role `json:"role"`
}

// HandleCreate registers a new account.
//
//	@Summary		Create a user
//	@Description	Registers a new active account with no admin flags. Root admin only.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		createUserRequest	true	"New user"
//	@Success		201		{object}	UserResponse		"Created user"
//	@Failure		400		{object}	httpx.ErrorResponse	"Malformed request or unknown role"
//	@Failure		409		{object}	httpx.ErrorResponse	"Username already taken"
//	@Router			/v1/admin/users [post].
func (h *AdminUsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "username, password, and role required")
		return
	}

	user, err := h.UserService.CreateUser(ctx, req.Username, req.PreferredName, req.Password, req.Role)
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown role")
		return
	case errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "already_exists", "username already taken")
		return
	case err != nil:
		slogx.FromContext(ctx).Error("user create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse(user))
}

type updateUserFlagsRequest struct {
	Role        *domain.Role `json:"role,omitempty"`
	IsActive    *bool        `json:"is_active,omitempty"`
	IsAdmin     *bool        `json:"is_admin,omitempty"`
	IsRootAdmin *bool        `json:"is_root_admin,omitempty"`
}

// HandlePatch applies a partial edit of role/active/admin flags.
//
//	@Summary		Update user flags
//	@Description	Partially updates role, active, and admin flags. Demoting or deactivating a pinned identity is always rejected.
//	@Tags			Admin
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"User ID"
//	@Param			request	body		updateUserFlagsRequest	true	"Fields to change"
//	@Success		200		{object}	UserResponse			"Updated user"
//	@Failure		400		{object}	httpx.ErrorResponse		"Malformed request or unknown role"
//	@Failure		403		{object}	httpx.ErrorResponse		"Pinned identity demotion rejected"
//	@Failure		404		{object}	httpx.ErrorResponse		"User not found"
//	@Router			/v1/admin/users/{id} [patch].
func (h *AdminUsersHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	var req updateUserFlagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed body")
		return
	}

	user, err := h.UserService.UpdateUserFlags(ctx, id, domain.UserFlagsUpdate{
		Role:        req.Role,
		IsActive:    req.IsActive,
		IsAdmin:     req.IsAdmin,
		IsRootAdmin: req.IsRootAdmin,
	})
	switch {
	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "unknown role")
		return
	case errors.Is(err, service.ErrPinnedRootAdmin):
		httpx.WriteError(w, http.StatusForbidden, "pinned_root_admin", "pinned identities cannot be demoted or deactivated")
		return
	case errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "user not found")
		return
	case err != nil:
		slogx.FromContext(ctx).Error("user flags update failed", "user_id", id, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, userResponse(user))
}
