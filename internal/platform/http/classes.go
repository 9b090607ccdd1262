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

type ClassesHandler struct {
	ClassService *service.ClassService
}

type ClassResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	TeacherID string    `json:"teacher_id"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func classResponse(c domain.Class) ClassResponse {
	return ClassResponse{
		ID:        c.ID,
		Name:      c.Name,
		Subject:   c.Subject,
		TeacherID: c.TeacherID,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type classRequest struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Archived bool   `json:"archived"`
}

// HandleList returns all classes.
//
//	@Summary	List classes
//	@Tags		Classes
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	ClassResponse	"Classes"
//	@Router		/v1/classes [get].
func (h *ClassesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	classes, err := h.ClassService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("class list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, classResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single class.
//
//	@Summary	Get a class
//	@Tags		Classes
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string				true	"Class ID"
//	@Success	200	{object}	ClassResponse		"Class"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/classes/{id} [get].
func (h *ClassesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.ClassService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "class not found")
			return
		}
		slogx.FromContext(r.Context()).Error("class get failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, classResponse(c))
}

// HandleCreate creates a class owned by the calling teacher.
//
//	@Summary	Create a class
//	@Tags		Classes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		classRequest		true	"New class"
//	@Success	201		{object}	ClassResponse		"Created class"
//	@Failure	400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Router		/v1/classes [post].
func (h *ClassesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name required")
		return
	}

	c, err := h.ClassService.Create(ctx, req.Name, req.Subject, ac.UserID)
	if err != nil {
		slogx.FromContext(ctx).Error("class create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, classResponse(c))
}

// HandleUpdate edits a class, including archiving it.
//
//	@Summary	Update a class
//	@Tags		Classes
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Class ID"
//	@Param		request	body		classRequest		true	"New values"
//	@Success	200		{object}	ClassResponse		"Updated class"
//	@Failure	400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure	404		{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/classes/{id} [put].
func (h *ClassesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name required")
		return
	}

	c, err := h.ClassService.Update(ctx, r.PathValue("id"), req.Name, req.Subject, req.Archived)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "class not found")
			return
		}
		slogx.FromContext(ctx).Error("class update failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, classResponse(c))
}

// HandleDelete removes a class.
//
//	@Summary	Delete a class
//	@Tags		Classes
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Class ID"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/classes/{id} [delete].
func (h *ClassesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ClassService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "class not found")
			return
		}
		slogx.FromContext(r.Context()).Error("class delete failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
