package service

import (
	"context"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/idx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

// staleFailedDocumentAge is how long failed import records are kept before
// housekeeping purges them.
const staleFailedDocumentAge = 30 * 24 * time.Hour

// DocumentService tracks document import records. The actual ingestion
// pipeline runs elsewhere and reports status back via MarkImported/MarkFailed.
type DocumentService struct {
	Store store.Store
}

func (s *DocumentService) Get(ctx context.Context, id string) (domain.Document, error) {
	return s.Store.Documents().GetDocument(ctx, id)
}

func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.Store.Documents().ListDocuments(ctx)
}

// StartImport registers a pending import record for an external document.
func (s *DocumentService) StartImport(ctx context.Context, name, source, importedBy string) (domain.Document, error) {
	now := time.Now().UTC()
	doc := domain.Document{
		ID:         idx.New().String(),
		Name:       name,
		Source:     source,
		Status:     domain.DocumentPending,
		ImportedBy: importedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Store.Documents().CreateDocument(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	slogx.FromContext(ctx).Info("document import started",
		"document_id", doc.ID, "source", source, "user_id", importedBy)
	return doc, nil
}

func (s *DocumentService) MarkImported(ctx context.Context, id string) error {
	return s.Store.Documents().UpdateDocumentStatus(ctx, id, domain.DocumentImported)
}

func (s *DocumentService) MarkFailed(ctx context.Context, id string) error {
	return s.Store.Documents().UpdateDocumentStatus(ctx, id, domain.DocumentFailed)
}

// PurgeStaleFailed removes failed import records older than the retention
// window. Called from the housekeeping loop.
func (s *DocumentService) PurgeStaleFailed(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-staleFailedDocumentAge)
	return s.Store.Documents().DeleteStaleFailedDocuments(ctx, cutoff)
}
