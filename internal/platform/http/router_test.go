package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/internal/platform/store/drivers/sqlite"
	"github.com/lecternhq/lectern/pkg/cryptox"
	"github.com/lecternhq/lectern/pkg/httpx"
	"github.com/lecternhq/lectern/pkg/idx"
	"github.com/lecternhq/lectern/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	store  store.Store
	tokens *service.TokenService
	router *Router
}

func newTestEnv(t *testing.T, pinned []string) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewHS256([]byte(testSecret), "lectern", []string{"lectern-api"})
	require.NoError(t, err)

	tokens := &service.TokenService{
		Codec:      codec,
		Store:      st,
		Issuer:     "lectern",
		Audience:   []string{"lectern-api"},
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	monitor := service.NewRootAdminMonitor(st, pinned, time.Nanosecond)
	authenticator := &Authenticator{Tokens: tokens, Store: st, Monitor: monitor, Pinned: pinned}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter("test", st, authenticator, logger)
	router.TokenService = tokens
	router.UserService = &service.UserService{Store: st, Pinned: pinned}
	router.ContentService = &service.ContentService{Store: st}
	router.ClassService = &service.ClassService{Store: st}
	router.DictionaryService = &service.DictionaryService{Store: st}
	router.DocumentService = &service.DocumentService{Store: st}
	router.ApplyRoutes()

	return &testEnv{store: st, tokens: tokens, router: router}
}

func (e *testEnv) seedUser(t *testing.T, username, password string, role domain.Role, active, admin, root bool) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
		IsAdmin:      admin,
		IsRootAdmin:  root,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.store.Users().CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (e *testEnv) accessToken(t *testing.T, userID string) string {
	t.Helper()
	pair, err := e.tokens.Issue(userID)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestLoginAndRefreshFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.seedUser(t, "alice", "hunter2!", domain.RoleTeacher, true, false, false)

	rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "hunter2!",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decodeJSON[TokenPairResponse](t, rec)
	require.NotEmpty(t, pair.AccessToken)
	require.Equal(t, "Bearer", pair.TokenType)

	t.Run("wrong password rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
			"username": "alice", "password": "nope",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh rotates the pair", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
			"refresh_token": pair.RefreshToken,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		fresh := decodeJSON[TokenPairResponse](t, rec)
		require.NotEmpty(t, fresh.AccessToken)
	})

	t.Run("access token rejected at refresh", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
			"refresh_token": pair.AccessToken,
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddlewareRejections(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	alice := env.seedUser(t, "alice", "pw", domain.RoleStudent, true, false, false)
	disabled := env.seedUser(t, "disabled", "pw", domain.RoleStudent, false, false, false)

	t.Run("missing token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/whoami", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/whoami", "garbage", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token on access endpoint", func(t *testing.T) {
		pair, err := env.tokens.Issue(alice.ID)
		require.NoError(t, err)
		rec := env.do(t, http.MethodGet, "/v1/whoami", pair.RefreshToken, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("disabled account", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/whoami", env.accessToken(t, disabled.ID), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestWhoamiEchoesAuthContext(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	approver := env.seedUser(t, "approver", "pw", domain.RoleApprover, true, false, false)

	rec := env.do(t, http.MethodGet, "/v1/whoami", env.accessToken(t, approver.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[WhoamiResponse](t, rec)
	require.Equal(t, approver.ID, body.UserID)
	require.Equal(t, domain.RoleApprover, body.Role)
	require.Contains(t, body.Entitlements, domain.EntAppUse)
	require.Contains(t, body.Entitlements, domain.EntApproverContent)
	require.True(t, body.Capabilities.CanApproveContent)
	require.False(t, body.Capabilities.CanAdminUsers)
	require.False(t, body.Impersonating)
}

func TestImpersonationFlow(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	root := env.seedUser(t, "root", "pw", domain.RoleStaff, true, true, true)
	student := env.seedUser(t, "student", "pw", domain.RoleStudent, true, false, false)

	rec := env.do(t, http.MethodPost, "/v1/auth/impersonate", env.accessToken(t, root.ID),
		map[string]string{"target_user_id": student.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	imp := decodeJSON[ImpersonationResponse](t, rec)

	t.Run("impersonated whoami reflects target and actor", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/whoami", imp.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeJSON[WhoamiResponse](t, rec)
		require.Equal(t, student.ID, body.UserID)
		require.True(t, body.Impersonating)
		require.Equal(t, root.ID, body.ActorUserID)
		// Entitlements are the target's, not the actor's.
		require.False(t, body.Capabilities.CanAdminUsers)
	})

	t.Run("non-admin cannot impersonate", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/impersonate", env.accessToken(t, student.ID),
			map[string]string{"target_user_id": root.ID})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("exit requires an impersonation session", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/impersonate/exit", env.accessToken(t, root.ID), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("exit returns a pair for the actor", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/impersonate/exit", imp.AccessToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		pair := decodeJSON[TokenPairResponse](t, rec)
		verified, err := env.tokens.Verify(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, root.ID, verified.UserID)
		require.False(t, verified.Impersonating)
	})

	t.Run("impersonation token cannot refresh", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/auth/refresh", "",
			map[string]string{"refresh_token": imp.AccessToken})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminUsersEndpoints(t *testing.T) {
	t.Parallel()

	pinnedID := idx.New().String()
	env := newTestEnv(t, []string{pinnedID})

	root := env.seedUser(t, "root", "pw", domain.RoleStaff, true, true, true)
	student := env.seedUser(t, "student", "pw", domain.RoleStudent, true, false, false)

	// Seed the pinned identity with a fixed ID.
	hash, err := cryptox.HashPassword("pw")
	require.NoError(t, err)
	now := time.Now().UTC()
	require.NoError(t, env.store.Users().CreateUser(context.Background(), domain.User{
		ID: pinnedID, Username: "pinned", PasswordHash: hash, Role: domain.RoleStaff,
		IsActive: true, IsAdmin: true, IsRootAdmin: true, CreatedAt: now, UpdatedAt: now,
	}))

	rootToken := env.accessToken(t, root.ID)

	t.Run("list requires root admin", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/admin/users", env.accessToken(t, student.ID), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodGet, "/v1/admin/users", rootToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		users := decodeJSON[[]UserResponse](t, rec)
		require.Len(t, users, 3)
	})

	t.Run("patch toggles flags", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/v1/admin/users/"+student.ID, rootToken,
			map[string]any{"role": "teacher"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeJSON[UserResponse](t, rec)
		require.Equal(t, domain.RoleTeacher, body.Role)
	})

	t.Run("demotion of pinned identity rejected even for root admins", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/v1/admin/users/"+pinnedID, rootToken,
			map[string]any{"is_active": false})
		require.Equal(t, http.StatusForbidden, rec.Code)
		body := decodeJSON[httpx.ErrorResponse](t, rec)
		require.Equal(t, "pinned_root_admin", body.Error)
	})

	t.Run("create user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/admin/users", rootToken, map[string]any{
			"username": "newbie", "password": "pw12345", "role": "student",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/admin/users", rootToken, map[string]any{
			"username": "newbie", "password": "pw12345", "role": "student",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	root := env.seedUser(t, "root", "pw", domain.RoleStaff, true, true, true)
	alice := env.seedUser(t, "alice", "old-pw", domain.RoleStudent, true, false, false)
	aliceToken := env.accessToken(t, alice.ID)

	t.Run("wrong current password rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/auth/password", aliceToken,
			map[string]string{"current_password": "nope", "new_password": "new-pw"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("impersonation session cannot change the target's password", func(t *testing.T) {
		imp, err := env.tokens.IssueImpersonation(root.ID, alice.ID)
		require.NoError(t, err)

		rec := env.do(t, http.MethodPut, "/v1/auth/password", imp.AccessToken,
			map[string]string{"current_password": "old-pw", "new_password": "new-pw"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rotation takes effect at login", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, "/v1/auth/password", aliceToken,
			map[string]string{"current_password": "old-pw", "new_password": "new-pw"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/auth/login", "",
			map[string]string{"username": "alice", "password": "old-pw"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/auth/login", "",
			map[string]string{"username": "alice", "password": "new-pw"})
		require.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON[HealthResponse](t, rec)
	require.Equal(t, "ok", body.Status)
}
