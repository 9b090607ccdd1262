package sqlite

import (
	"context"

	"github.com/lecternhq/lectern/internal/platform/domain"
)

type classesRepo struct {
	db dbtx
}

const classColumns = `id, name, subject, teacher_id, archived, created_at, updated_at`

func scanClass(row interface{ Scan(...any) error }) (domain.Class, error) {
	var c domain.Class
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Subject,
		&c.TeacherID,
		&c.Archived,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return domain.Class{}, err
	}
	return c, nil
}

func (r *classesRepo) GetClass(ctx context.Context, id string) (domain.Class, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = ?`, id)

	c, err := scanClass(row)
	if err != nil {
		return domain.Class{}, mapNotFound(err)
	}
	return c, nil
}

func (r *classesRepo) ListClasses(ctx context.Context) ([]domain.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []domain.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *classesRepo) CreateClass(ctx context.Context, c domain.Class) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO classes (id, name, subject, teacher_id, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		c.ID, c.Name, c.Subject, c.TeacherID, c.Archived,
	)
	return mapAlreadyExists(err)
}

func (r *classesRepo) UpdateClass(ctx context.Context, c domain.Class) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE classes
		SET name = ?, subject = ?, archived = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		c.Name, c.Subject, c.Archived, c.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *classesRepo) DeleteClass(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
