package sqlite

import (
	"context"

	"github.com/lecternhq/lectern/internal/platform/domain"
)

type contentRepo struct {
	db dbtx
}

const contentColumns = `id, title, body, subject, status, created_by, created_at, updated_at`

func scanContentItem(row interface{ Scan(...any) error }) (domain.ContentItem, error) {
	var item domain.ContentItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.Body,
		&item.Subject,
		&item.Status,
		&item.CreatedBy,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return domain.ContentItem{}, err
	}
	return item, nil
}

func (r *contentRepo) GetContentItem(ctx context.Context, id string) (domain.ContentItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)

	item, err := scanContentItem(row)
	if err != nil {
		return domain.ContentItem{}, mapNotFound(err)
	}
	return item, nil
}

func (r *contentRepo) ListContentItems(ctx context.Context) ([]domain.ContentItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contentColumns+` FROM content_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *contentRepo) CreateContentItem(ctx context.Context, item domain.ContentItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content_items (id, title, body, subject, status, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		item.ID, item.Title, item.Body, item.Subject, item.Status, item.CreatedBy,
	)
	return mapAlreadyExists(err)
}

func (r *contentRepo) UpdateContentItem(ctx context.Context, item domain.ContentItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE content_items
		SET title = ?, body = ?, subject = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		item.Title, item.Body, item.Subject, item.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *contentRepo) UpdateContentStatus(ctx context.Context, id string, status domain.ContentStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE content_items SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *contentRepo) DeleteContentItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
