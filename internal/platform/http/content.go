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

type ContentHandler struct {
	ContentService *service.ContentService
}

type ContentResponse struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Subject   string               `json:"subject"`
	Status    domain.ContentStatus `json:"status"`
	CreatedBy string               `json:"created_by"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

func contentResponse(item domain.ContentItem) ContentResponse {
	return ContentResponse{
		ID:        item.ID,
		Title:     item.Title,
		Body:      item.Body,
		Subject:   item.Subject,
		Status:    item.Status,
		CreatedBy: item.CreatedBy,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

type contentRequest struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Subject string `json:"subject"`
}

// HandleList returns all content items.
//
//	@Summary	List content items
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	ContentResponse	"Content items"
//	@Router		/v1/content [get].
func (h *ContentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.ContentService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("content list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]ContentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, contentResponse(item))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single content item.
//
//	@Summary	Get a content item
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string				true	"Content item ID"
//	@Success	200	{object}	ContentResponse		"Content item"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/content/{id} [get].
func (h *ContentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.ContentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "content item not found")
			return
		}
		slogx.FromContext(r.Context()).Error("content get failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contentResponse(item))
}

// HandleCreate creates a draft content item owned by the caller.
//
//	@Summary	Create a content item
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		contentRequest		true	"New content"
//	@Success	201		{object}	ContentResponse		"Created item"
//	@Failure	400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Router		/v1/content [post].
func (h *ContentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "title required")
		return
	}

	item, err := h.ContentService.Create(ctx, req.Title, req.Body, req.Subject, ac.UserID)
	if err != nil {
		slogx.FromContext(ctx).Error("content create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, contentResponse(item))
}

// HandleUpdate edits a content item. Approved items drop back to pending.
//
//	@Summary	Update a content item
//	@Tags		Content
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Content item ID"
//	@Param		request	body		contentRequest		true	"New content"
//	@Success	200		{object}	ContentResponse		"Updated item"
//	@Failure	400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Failure	404		{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/content/{id} [put].
func (h *ContentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "title required")
		return
	}

	item, err := h.ContentService.Update(ctx, r.PathValue("id"), req.Title, req.Body, req.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "content item not found")
			return
		}
		slogx.FromContext(ctx).Error("content update failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contentResponse(item))
}

// HandleApprove marks a content item approved.
//
//	@Summary	Approve a content item
//	@Tags		Content
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string				true	"Content item ID"
//	@Success	200	{object}	ContentResponse		"Approved item"
//	@Failure	403	{object}	httpx.ErrorResponse	"Caller may not approve content"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/content/{id}/approve [post].
func (h *ContentHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	item, err := h.ContentService.Approve(ctx, r.PathValue("id"), ac.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "content item not found")
			return
		}
		slogx.FromContext(ctx).Error("content approve failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, contentResponse(item))
}

// HandleDelete removes a content item.
//
//	@Summary	Delete a content item
//	@Tags		Content
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Content item ID"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/content/{id} [delete].
func (h *ContentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.ContentService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "content item not found")
			return
		}
		slogx.FromContext(r.Context()).Error("content delete failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
