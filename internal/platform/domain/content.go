package domain

import "time"

// ContentStatus tracks a content item through the review pipeline.
type ContentStatus string

const (
	ContentDraft    ContentStatus = "draft"
	ContentPending  ContentStatus = "pending"
	ContentApproved ContentStatus = "approved"
)

type ContentItem struct {
	ID        string
	Title     string
	Body      string
	Subject   string
	Status    ContentStatus
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
