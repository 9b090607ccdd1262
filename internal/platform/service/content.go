package service

import (
	"context"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/idx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

// ContentService manages content items through the draft/pending/approved
// review pipeline.
type ContentService struct {
	Store store.Store
}

func (s *ContentService) Get(ctx context.Context, id string) (domain.ContentItem, error) {
	return s.Store.Content().GetContentItem(ctx, id)
}

func (s *ContentService) List(ctx context.Context) ([]domain.ContentItem, error) {
	return s.Store.Content().ListContentItems(ctx)
}

func (s *ContentService) Create(ctx context.Context, title, body, subject, createdBy string) (domain.ContentItem, error) {
	now := time.Now().UTC()
	item := domain.ContentItem{
		ID:        idx.New().String(),
		Title:     title,
		Body:      body,
		Subject:   subject,
		Status:    domain.ContentDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Content().CreateContentItem(ctx, item); err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

// Update replaces title/body/subject and resets an approved item back to
// pending, so edits always pass review again.
func (s *ContentService) Update(ctx context.Context, id, title, body, subject string) (domain.ContentItem, error) {
	item, err := s.Store.Content().GetContentItem(ctx, id)
	if err != nil {
		return domain.ContentItem{}, err
	}

	item.Title = title
	item.Body = body
	item.Subject = subject
	if item.Status == domain.ContentApproved {
		item.Status = domain.ContentPending
	}
	item.UpdatedAt = time.Now().UTC()

	if err := s.Store.Content().UpdateContentItem(ctx, item); err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

// Approve marks a pending or draft item approved. Recorded against the
// approver in the log, not the row; the pipeline has no per-transition audit
// table.
func (s *ContentService) Approve(ctx context.Context, id, approverID string) (domain.ContentItem, error) {
	if err := s.Store.Content().UpdateContentStatus(ctx, id, domain.ContentApproved); err != nil {
		return domain.ContentItem{}, err
	}
	slogx.FromContext(ctx).Info("content approved", "content_id", id, "approver_id", approverID)
	return s.Store.Content().GetContentItem(ctx, id)
}

func (s *ContentService) Delete(ctx context.Context, id string) error {
	return s.Store.Content().DeleteContentItem(ctx, id)
}
