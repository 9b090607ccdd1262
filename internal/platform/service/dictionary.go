package service

import (
	"context"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/idx"
)

// DictionaryService manages per-user dictionary sets. Any active user may
// own sets; there is no sharing model yet.
type DictionaryService struct {
	Store store.Store
}

func (s *DictionaryService) Get(ctx context.Context, id string) (domain.DictionarySet, error) {
	return s.Store.DictionarySets().GetDictionarySet(ctx, id)
}

func (s *DictionaryService) List(ctx context.Context) ([]domain.DictionarySet, error) {
	return s.Store.DictionarySets().ListDictionarySets(ctx)
}

func (s *DictionaryService) Create(ctx context.Context, name, language string, entries []domain.DictionaryEntry, ownerID string) (domain.DictionarySet, error) {
	now := time.Now().UTC()
	set := domain.DictionarySet{
		ID:        idx.New().String(),
		Name:      name,
		Language:  language,
		Entries:   entries,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.DictionarySets().CreateDictionarySet(ctx, set); err != nil {
		return domain.DictionarySet{}, err
	}
	return set, nil
}

func (s *DictionaryService) Update(ctx context.Context, id, name, language string, entries []domain.DictionaryEntry) (domain.DictionarySet, error) {
	set, err := s.Store.DictionarySets().GetDictionarySet(ctx, id)
	if err != nil {
		return domain.DictionarySet{}, err
	}

	set.Name = name
	set.Language = language
	set.Entries = entries
	set.UpdatedAt = time.Now().UTC()

	if err := s.Store.DictionarySets().UpdateDictionarySet(ctx, set); err != nil {
		return domain.DictionarySet{}, err
	}
	return set, nil
}

func (s *DictionaryService) Delete(ctx context.Context, id string) error {
	return s.Store.DictionarySets().DeleteDictionarySet(ctx, id)
}
