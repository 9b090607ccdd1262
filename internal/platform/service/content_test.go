package service

import (
	"context"
	"testing"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/stretchr/testify/require"
)

func TestContentReviewPipeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	author := seedUser(t, st, seedOpts{username: "teacher", password: "pw", role: domain.RoleTeacher, active: true})
	approver := seedUser(t, st, seedOpts{username: "approver", password: "pw", role: domain.RoleApprover, active: true})

	svc := &ContentService{Store: st}

	item, err := svc.Create(ctx, "Fractions", "Intro to fractions", "maths", author.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ContentDraft, item.Status)

	approved, err := svc.Approve(ctx, item.ID, approver.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ContentApproved, approved.Status)

	t.Run("editing an approved item sends it back to review", func(t *testing.T) {
		edited, err := svc.Update(ctx, item.ID, "Fractions v2", "Expanded intro", "maths")
		require.NoError(t, err)
		require.Equal(t, domain.ContentPending, edited.Status)
		require.Equal(t, "Fractions v2", edited.Title)
	})

	t.Run("delete removes the item", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, item.ID))
		_, err := svc.Get(ctx, item.ID)
		require.Error(t, err)
	})
}
