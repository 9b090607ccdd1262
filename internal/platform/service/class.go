package service

import (
	"context"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/idx"
)

// ClassService manages classes. Teachers own the classes they create.
type ClassService struct {
	Store store.Store
}

func (s *ClassService) Get(ctx context.Context, id string) (domain.Class, error) {
	return s.Store.Classes().GetClass(ctx, id)
}

func (s *ClassService) List(ctx context.Context) ([]domain.Class, error) {
	return s.Store.Classes().ListClasses(ctx)
}

func (s *ClassService) Create(ctx context.Context, name, subject, teacherID string) (domain.Class, error) {
	now := time.Now().UTC()
	c := domain.Class{
		ID:        idx.New().String(),
		Name:      name,
		Subject:   subject,
		TeacherID: teacherID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Classes().CreateClass(ctx, c); err != nil {
		return domain.Class{}, err
	}
	return c, nil
}

func (s *ClassService) Update(ctx context.Context, id, name, subject string, archived bool) (domain.Class, error) {
	c, err := s.Store.Classes().GetClass(ctx, id)
	if err != nil {
		return domain.Class{}, err
	}

	c.Name = name
	c.Subject = subject
	c.Archived = archived
	c.UpdatedAt = time.Now().UTC()

	if err := s.Store.Classes().UpdateClass(ctx, c); err != nil {
		return domain.Class{}, err
	}
	return c, nil
}

func (s *ClassService) Delete(ctx context.Context, id string) error {
	return s.Store.Classes().DeleteClass(ctx, id)
}
