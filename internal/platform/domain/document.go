package domain

import "time"

// DocumentStatus tracks an import record through the ingestion pipeline.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentImported DocumentStatus = "imported"
	DocumentFailed   DocumentStatus = "failed"
)

// Document is an import record for an externally sourced document. The
// ingestion pipeline itself lives outside this service; we only track the
// record and gate who may create one.
type Document struct {
	ID         string
	Name       string
	Source     string
	Status     DocumentStatus
	ImportedBy string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
