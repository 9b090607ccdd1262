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

type DictionariesHandler struct {
	DictionaryService *service.DictionaryService
}

type DictionarySetResponse struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Language  string                   `json:"language"`
	Entries   []domain.DictionaryEntry `json:"entries"`
	OwnerID   string                   `json:"owner_id"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

func dictionarySetResponse(s domain.DictionarySet) DictionarySetResponse {
	entries := s.Entries
	if entries == nil {
		entries = []domain.DictionaryEntry{}
	}
	return DictionarySetResponse{
		ID:        s.ID,
		Name:      s.Name,
		Language:  s.Language,
		Entries:   entries,
		OwnerID:   s.OwnerID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type dictionarySetRequest struct {
	Name     string                   `json:"name"`
	Language string                   `json:"language"`
	Entries  []domain.DictionaryEntry `json:"entries"`
}

// HandleList returns all dictionary sets.
//
//	@Summary	List dictionary sets
//	@Tags		Dictionaries
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	DictionarySetResponse	"Dictionary sets"
//	@Router		/v1/dictsets [get].
func (h *DictionariesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sets, err := h.DictionaryService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("dictionary set list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]DictionarySetResponse, 0, len(sets))
	for _, s := range sets {
		out = append(out, dictionarySetResponse(s))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single dictionary set.
//
//	@Summary	Get a dictionary set
//	@Tags		Dictionaries
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string					true	"Dictionary set ID"
//	@Success	200	{object}	DictionarySetResponse	"Dictionary set"
//	@Failure	404	{object}	httpx.ErrorResponse		"Not found"
//	@Router		/v1/dictsets/{id} [get].
func (h *DictionariesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.DictionaryService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "dictionary set not found")
			return
		}
		slogx.FromContext(r.Context()).Error("dictionary set get failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dictionarySetResponse(s))
}

// HandleCreate creates a dictionary set owned by the caller.
//
//	@Summary	Create a dictionary set
//	@Tags		Dictionaries
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dictionarySetRequest	true	"New set"
//	@Success	201		{object}	DictionarySetResponse	"Created set"
//	@Failure	400		{object}	httpx.ErrorResponse		"Malformed request"
//	@Router		/v1/dictsets [post].
func (h *DictionariesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req dictionarySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name required")
		return
	}

	s, err := h.DictionaryService.Create(ctx, req.Name, req.Language, req.Entries, ac.UserID)
	if err != nil {
		slogx.FromContext(ctx).Error("dictionary set create failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, dictionarySetResponse(s))
}

// HandleUpdate replaces a dictionary set's name, language, and entries.
//
//	@Summary	Update a dictionary set
//	@Tags		Dictionaries
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Dictionary set ID"
//	@Param		request	body		dictionarySetRequest	true	"New values"
//	@Success	200		{object}	DictionarySetResponse	"Updated set"
//	@Failure	400		{object}	httpx.ErrorResponse		"Malformed request"
//	@Failure	404		{object}	httpx.ErrorResponse		"Not found"
//	@Router		/v1/dictsets/{id} [put].
func (h *DictionariesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dictionarySetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name required")
		return
	}

	s, err := h.DictionaryService.Update(ctx, r.PathValue("id"), req.Name, req.Language, req.Entries)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "dictionary set not found")
			return
		}
		slogx.FromContext(ctx).Error("dictionary set update failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dictionarySetResponse(s))
}

// HandleDelete removes a dictionary set.
//
//	@Summary	Delete a dictionary set
//	@Tags		Dictionaries
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Dictionary set ID"
//	@Success	204	"Deleted"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/dictsets/{id} [delete].
func (h *DictionariesHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.DictionaryService.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "dictionary set not found")
			return
		}
		slogx.FromContext(r.Context()).Error("dictionary set delete failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
