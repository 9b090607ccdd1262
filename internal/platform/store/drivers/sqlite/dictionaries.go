package sqlite

import (
	"context"
	"encoding/json"

	"github.com/lecternhq/lectern/internal/platform/domain"
)

type dictionarySetsRepo struct {
	db dbtx
}

const dictSetColumns = `id, name, language, entries, owner_id, created_at, updated_at`

func scanDictionarySet(row interface{ Scan(...any) error }) (domain.DictionarySet, error) {
	var s domain.DictionarySet
	var entriesJSON string

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Language,
		&entriesJSON,
		&s.OwnerID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.DictionarySet{}, err
	}

	if entriesJSON != "" {
		if err := json.Unmarshal([]byte(entriesJSON), &s.Entries); err != nil {
			return domain.DictionarySet{}, err
		}
	}
	return s, nil
}

func marshalEntries(entries []domain.DictionaryEntry) (string, error) {
	if entries == nil {
		entries = []domain.DictionaryEntry{}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *dictionarySetsRepo) GetDictionarySet(ctx context.Context, id string) (domain.DictionarySet, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+dictSetColumns+` FROM dictionary_sets WHERE id = ?`, id)

	s, err := scanDictionarySet(row)
	if err != nil {
		return domain.DictionarySet{}, mapNotFound(err)
	}
	return s, nil
}

func (r *dictionarySetsRepo) ListDictionarySets(ctx context.Context) ([]domain.DictionarySet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+dictSetColumns+` FROM dictionary_sets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []domain.DictionarySet
	for rows.Next() {
		s, err := scanDictionarySet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}

func (r *dictionarySetsRepo) CreateDictionarySet(ctx context.Context, s domain.DictionarySet) error {
	entries, err := marshalEntries(s.Entries)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO dictionary_sets (id, name, language, entries, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		s.ID, s.Name, s.Language, entries, s.OwnerID,
	)
	return mapAlreadyExists(err)
}

func (r *dictionarySetsRepo) UpdateDictionarySet(ctx context.Context, s domain.DictionarySet) error {
	entries, err := marshalEntries(s.Entries)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE dictionary_sets
		SET name = ?, language = ?, entries = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.Name, s.Language, entries, s.ID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *dictionarySetsRepo) DeleteDictionarySet(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dictionary_sets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
