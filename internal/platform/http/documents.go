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

type DocumentsHandler struct {
	DocumentService *service.DocumentService
}

type DocumentResponse struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Source     string                `json:"source"`
	Status     domain.DocumentStatus `json:"status"`
	ImportedBy string                `json:"imported_by"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

func documentResponse(d domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:         d.ID,
		Name:       d.Name,
		Source:     d.Source,
		Status:     d.Status,
		ImportedBy: d.ImportedBy,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type importRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

// HandleList returns all document import records.
//
//	@Summary	List document imports
//	@Tags		Documents
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	DocumentResponse	"Import records"
//	@Router		/v1/documents [get].
func (h *DocumentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	docs, err := h.DocumentService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("document list failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentResponse(d))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet returns a single import record.
//
//	@Summary	Get a document import
//	@Tags		Documents
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		string				true	"Document ID"
//	@Success	200	{object}	DocumentResponse	"Import record"
//	@Failure	404	{object}	httpx.ErrorResponse	"Not found"
//	@Router		/v1/documents/{id} [get].
func (h *DocumentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	d, err := h.DocumentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "document not found")
			return
		}
		slogx.FromContext(r.Context()).Error("document get failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, documentResponse(d))
}

// HandleImport registers a pending document import for the caller.
//
//	@Summary	Start a document import
//	@Tags		Documents
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		importRequest		true	"Document to import"
//	@Success	202		{object}	DocumentResponse	"Pending import record"
//	@Failure	400		{object}	httpx.ErrorResponse	"Malformed request"
//	@Router		/v1/documents/import [post].
func (h *DocumentsHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ac, ok := AuthFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Source == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name and source required")
		return
	}

	doc, err := h.DocumentService.StartImport(ctx, req.Name, req.Source, ac.UserID)
	if err != nil {
		slogx.FromContext(ctx).Error("document import failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	httpx.WriteJSON(w, http.StatusAccepted, documentResponse(doc))
}
