package service

import (
	"context"
	"testing"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/internal/platform/store/drivers/sqlite"
	"github.com/lecternhq/lectern/pkg/cryptox"
	"github.com/lecternhq/lectern/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

type seedOpts struct {
	username string
	password string
	role     domain.Role
	active   bool
	admin    bool
	root     bool
}

func seedUser(t *testing.T, st store.Store, opts seedOpts) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(opts.password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     opts.username,
		PasswordHash: hash,
		Role:         opts.role,
		IsActive:     opts.active,
		IsAdmin:      opts.admin,
		IsRootAdmin:  opts.root,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}
