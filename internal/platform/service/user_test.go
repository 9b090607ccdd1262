package service

import (
	"context"
	"testing"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/stretchr/testify/require"
)

func TestUserServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := &UserService{Store: newTestStore(t)}

	user, err := svc.CreateUser(ctx, "alice", "Alice", "hunter2!", domain.RoleTeacher)
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.True(t, user.IsActive)
	require.False(t, user.IsAdmin)
	require.False(t, user.IsRootAdmin)
	require.NotEqual(t, "hunter2!", user.PasswordHash)

	t.Run("duplicate username rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "alice", "Other Alice", "pw", domain.RoleStudent)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := svc.CreateUser(ctx, "bob", "Bob", "pw", domain.Role("wizard"))
		require.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestUserServiceChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	alice := seedUser(t, st, seedOpts{username: "alice", password: "old-pw", role: domain.RoleStudent, active: true})

	svc := &UserService{Store: st}
	tokens := newTestTokenService(t, "lectern", []string{"lectern-api"})
	tokens.Store = st

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, "nope", "new-pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = tokens.Login(ctx, "alice", "old-pw")
		require.NoError(t, err, "a rejected change must leave the old credential intact")
	})

	t.Run("rotation replaces the credential", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, alice.ID, "old-pw", "new-pw"))

		_, err := tokens.Login(ctx, "alice", "old-pw")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = tokens.Login(ctx, "alice", "new-pw")
		require.NoError(t, err)
	})

	t.Run("unknown user yields not found", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "missing", "old-pw", "new-pw")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUserServiceDemotionGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	pinned := seedUser(t, st, seedOpts{username: "pinned", password: "pw", role: domain.RoleStaff, active: true, admin: true, root: true})
	other := seedUser(t, st, seedOpts{username: "other", password: "pw", role: domain.RoleStaff, active: true, admin: true, root: true})

	svc := &UserService{Store: st, Pinned: []string{pinned.ID}}

	off := false
	on := true

	t.Run("deactivating a pinned identity is rejected", func(t *testing.T) {
		_, err := svc.UpdateUserFlags(ctx, pinned.ID, domain.UserFlagsUpdate{IsActive: &off})
		require.ErrorIs(t, err, ErrPinnedRootAdmin)
	})

	t.Run("stripping admin flags from a pinned identity is rejected", func(t *testing.T) {
		_, err := svc.UpdateUserFlags(ctx, pinned.ID, domain.UserFlagsUpdate{IsAdmin: &off})
		require.ErrorIs(t, err, ErrPinnedRootAdmin)

		_, err = svc.UpdateUserFlags(ctx, pinned.ID, domain.UserFlagsUpdate{IsRootAdmin: &off})
		require.ErrorIs(t, err, ErrPinnedRootAdmin)
	})

	t.Run("non-demoting edits of a pinned identity pass", func(t *testing.T) {
		role := domain.RoleApprover
		updated, err := svc.UpdateUserFlags(ctx, pinned.ID, domain.UserFlagsUpdate{Role: &role, IsActive: &on})
		require.NoError(t, err)
		require.Equal(t, domain.RoleApprover, updated.Role)
		require.True(t, updated.IsRootAdmin)
	})

	t.Run("unpinned root admins can still be demoted", func(t *testing.T) {
		updated, err := svc.UpdateUserFlags(ctx, other.ID, domain.UserFlagsUpdate{IsRootAdmin: &off})
		require.NoError(t, err)
		require.False(t, updated.IsRootAdmin)
	})

	t.Run("unknown user yields not found", func(t *testing.T) {
		_, err := svc.UpdateUserFlags(ctx, "missing", domain.UserFlagsUpdate{IsActive: &on})
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
