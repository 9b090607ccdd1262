package service

import (
	"context"
	"testing"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const tokenTestSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenService(t *testing.T, issuer string, audience []string) *TokenService {
	t.Helper()

	codec, err := jwtx.NewHS256([]byte(tokenTestSecret), issuer, audience)
	require.NoError(t, err)

	return &TokenService{
		Codec:      codec,
		Store:      newTestStore(t),
		Issuer:     issuer,
		Audience:   audience,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestTokenService(t, "lectern", []string{"lectern-api"})

	pair, err := svc.Issue("user-123")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := svc.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-123", access.UserID)
	require.Equal(t, jwtx.TokenTypeAccess, access.Type)
	require.False(t, access.Impersonating)
	require.Empty(t, access.ActorUserID)

	refresh, err := svc.Verify(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "user-123", refresh.UserID)
	require.Equal(t, jwtx.TokenTypeRefresh, refresh.Type)
}

func TestTokenIssuerAudienceBinding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	issuerA := newTestTokenService(t, "lectern", []string{"lectern-api"})
	issuerB := newTestTokenService(t, "other-service", []string{"lectern-api"})
	audienceB := newTestTokenService(t, "lectern", []string{"other-api"})

	pair, err := issuerA.Issue("user-123")
	require.NoError(t, err)

	t.Run("wrong issuer rejected despite shared secret", func(t *testing.T) {
		_, err := issuerB.Verify(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience rejected despite shared secret", func(t *testing.T) {
		_, err := audienceB.Verify(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := issuerA.Verify(ctx, "not.a.token")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestTokenService(t, "lectern", []string{"lectern-api"})
	seedUser(t, svc.Store, seedOpts{username: "alice", password: "hunter2!", role: domain.RoleStudent, active: true})
	seedUser(t, svc.Store, seedOpts{username: "mallory", password: "pass", role: domain.RoleStudent, active: false})

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice", "hunter2!")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown username matches wrong password error", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "hunter2!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		_, err := svc.Login(ctx, "mallory", "pass")
		require.ErrorIs(t, err, ErrAccountDisabled)
	})
}

func TestTokenRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newTestTokenService(t, "lectern", []string{"lectern-api"})
	alice := seedUser(t, svc.Store, seedOpts{username: "alice", password: "pw", role: domain.RoleStudent, active: true})
	root := seedUser(t, svc.Store, seedOpts{username: "root", password: "pw", role: domain.RoleStaff, active: true, admin: true, root: true})

	pair, err := svc.Issue(alice.ID)
	require.NoError(t, err)

	t.Run("refresh token yields a new pair", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		verified, err := svc.Verify(ctx, fresh.AccessToken)
		require.NoError(t, err)
		require.Equal(t, alice.ID, verified.UserID)
	})

	t.Run("access token rejected at refresh", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("impersonation token rejected at refresh", func(t *testing.T) {
		imp, err := svc.IssueImpersonation(root.ID, alice.ID)
		require.NoError(t, err)

		verified, err := svc.Verify(ctx, imp.AccessToken)
		require.NoError(t, err)
		require.True(t, verified.Impersonating)
		require.Equal(t, root.ID, verified.ActorUserID)
		require.Equal(t, alice.ID, verified.UserID)

		_, err = svc.Refresh(ctx, imp.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh for disabled account rejected", func(t *testing.T) {
		bob := seedUser(t, svc.Store, seedOpts{username: "bob", password: "pw", role: domain.RoleStudent, active: true})
		bobPair, err := svc.Issue(bob.ID)
		require.NoError(t, err)

		inactive := false
		require.NoError(t, svc.Store.Users().UpdateUserFlags(ctx, bob.ID, domain.UserFlagsUpdate{IsActive: &inactive}))

		_, err = svc.Refresh(ctx, bobPair.RefreshToken)
		require.ErrorIs(t, err, ErrAccountDisabled)
	})
}
