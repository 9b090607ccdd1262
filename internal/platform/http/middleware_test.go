package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/stretchr/testify/require"
)

func TestCrudGuardEnforcement(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	student := env.seedUser(t, "student", "pw", domain.RoleStudent, true, false, false)
	teacher := env.seedUser(t, "teacher", "pw", domain.RoleTeacher, true, false, false)
	approver := env.seedUser(t, "approver", "pw", domain.RoleApprover, true, false, false)

	studentToken := env.accessToken(t, student.ID)
	teacherToken := env.accessToken(t, teacher.ID)
	approverToken := env.accessToken(t, approver.ID)

	t.Run("students can read but not write content", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/v1/content", studentToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/content", studentToken,
			map[string]string{"title": "Nope"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teachers can create but not approve content", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/content", teacherToken,
			map[string]string{"title": "Fractions", "subject": "maths"})
		require.Equal(t, http.StatusCreated, rec.Code)
		item := decodeJSON[ContentResponse](t, rec)
		require.Equal(t, domain.ContentDraft, item.Status)
		require.Equal(t, teacher.ID, item.CreatedBy)

		rec = env.do(t, http.MethodPost, "/v1/content/"+item.ID+"/approve", teacherToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/content/"+item.ID+"/approve", approverToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		approved := decodeJSON[ContentResponse](t, rec)
		require.Equal(t, domain.ContentApproved, approved.Status)
	})

	t.Run("classes require teacher tools", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/classes", studentToken,
			map[string]string{"name": "7B"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/classes", teacherToken,
			map[string]string{"name": "7B", "subject": "maths"})
		require.Equal(t, http.StatusCreated, rec.Code)
		class := decodeJSON[ClassResponse](t, rec)
		require.Equal(t, teacher.ID, class.TeacherID)
	})

	t.Run("dictionary sets are open to any active user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/dictsets", studentToken, map[string]any{
			"name": "French basics", "language": "fr",
			"entries": []map[string]string{{"term": "chat", "definition": "cat"}},
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		set := decodeJSON[DictionarySetResponse](t, rec)
		require.Equal(t, student.ID, set.OwnerID)
		require.Len(t, set.Entries, 1)
	})

	t.Run("document import requires teacher tools", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/documents/import", studentToken,
			map[string]string{"name": "worksheet.pdf", "source": "https://example.com/w.pdf"})
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/v1/documents/import", teacherToken,
			map[string]string{"name": "worksheet.pdf", "source": "https://example.com/w.pdf"})
		require.Equal(t, http.StatusAccepted, rec.Code)
		doc := decodeJSON[DocumentResponse](t, rec)
		require.Equal(t, domain.DocumentPending, doc.Status)
	})
}

func TestEntitlementsRecomputedPerRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t, nil)
	teacher := env.seedUser(t, "teacher", "pw", domain.RoleTeacher, true, false, false)
	token := env.accessToken(t, teacher.ID)

	rec := env.do(t, http.MethodPost, "/v1/classes", token, map[string]string{"name": "7B"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Demote to student; the still-valid token loses teacher tools on the
	// very next request.
	role := domain.RoleStudent
	require.NoError(t, env.store.Users().UpdateUserFlags(ctx, teacher.ID, domain.UserFlagsUpdate{Role: &role}))

	rec = env.do(t, http.MethodPost, "/v1/classes", token, map[string]string{"name": "8C"})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPinnedIdentitySelfHealsOnRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv(t, nil)
	pinned := env.seedUser(t, "pinned", "pw", domain.RoleStaff, true, true, true)
	env.seedUser(t, "other-root", "pw", domain.RoleStaff, true, true, true)

	// The pinned ID is only known after seeding; patch it into the
	// authenticator before simulating drift.
	env.router.authenticator.Pinned = []string{pinned.ID}

	off := false
	require.NoError(t, env.store.Users().UpdateUserFlags(ctx, pinned.ID, domain.UserFlagsUpdate{IsRootAdmin: &off}))

	rec := env.do(t, http.MethodGet, "/v1/whoami", env.accessToken(t, pinned.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeJSON[WhoamiResponse](t, rec)
	require.True(t, body.Capabilities.CanAdminUsers, "pinned identity heals on its own request")

	healed, err := env.store.Users().GetUserByID(ctx, pinned.ID)
	require.NoError(t, err)
	require.True(t, healed.IsRootAdmin)
}
