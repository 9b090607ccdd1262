package sqlite

import (
	"context"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
)

type documentsRepo struct {
	db dbtx
}

const documentColumns = `id, name, source, status, imported_by, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Source,
		&d.Status,
		&d.ImportedBy,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	return d, nil
}

func (r *documentsRepo) GetDocument(ctx context.Context, id string) (domain.Document, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	d, err := scanDocument(row)
	if err != nil {
		return domain.Document{}, mapNotFound(err)
	}
	return d, nil
}

func (r *documentsRepo) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *documentsRepo) CreateDocument(ctx context.Context, d domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (id, name, source, status, imported_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		d.ID, d.Name, d.Source, d.Status, d.ImportedBy,
	)
	return mapAlreadyExists(err)
}

func (r *documentsRepo) UpdateDocumentStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *documentsRepo) DeleteStaleFailedDocuments(ctx context.Context, olderThan time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE status = 'failed' AND updated_at < ?`,
		olderThan,
	)
	return err
}
