package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/service"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/httpx"
	"github.com/lecternhq/lectern/pkg/jwtx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

type authCtxKey struct{}

// AuthFromContext returns the authorization context attached by the
// Authenticator middleware.
func AuthFromContext(ctx context.Context) (domain.AuthContext, bool) {
	ac, ok := ctx.Value(authCtxKey{}).(domain.AuthContext)
	return ac, ok
}

// Authenticator turns a bearer token into a request-scoped authorization
// context. Entitlements are recomputed from the current user record on every
// request; nothing here is cached, so a role change or deactivation takes
// effect on the next request.
type Authenticator struct {
	Tokens  *service.TokenService
	Store   store.Store
	Monitor *service.RootAdminMonitor
	Pinned  []string
}

func (a *Authenticator) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := httpx.BearerToken(r)
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "missing_token", "authorization required")
				return
			}

			verified, err := a.Tokens.Verify(ctx, raw)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "token verification failed")
				return
			}
			if verified.Type != jwtx.TokenTypeAccess {
				httpx.WriteError(w, http.StatusUnauthorized, "wrong_token_type", "access token required")
				return
			}

			user, err := a.Store.Users().GetUserByID(ctx, verified.UserID)
			if err != nil {
				// A valid signature for a vanished user still gets a 401,
				// not a 500; the token proves nothing without the record.
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "unknown subject")
				return
			}

			// Every authenticated request opportunistically verifies the
			// root-admin invariant. Throttled internally, never fails us.
			a.Monitor.Ensure(ctx, "request")

			// A pinned identity whose flags have drifted heals itself on its
			// own next request rather than waiting for the monitor window.
			if slices.Contains(a.Pinned, user.ID) && (!user.IsAdmin || !user.IsRootAdmin || !user.IsActive) {
				if err := a.Store.Users().PromoteToRootAdmin(ctx, user.ID); err != nil {
					slogx.FromContext(ctx).Error("pinned self-heal failed", "user_id", user.ID, "err", err)
				} else if user, err = a.Store.Users().GetUserByID(ctx, user.ID); err != nil {
					httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "unknown subject")
					return
				}
			}

			if !user.IsActive {
				httpx.WriteError(w, http.StatusForbidden, "account_disabled", "account is disabled")
				return
			}

			ac := domain.AuthContext{
				UserID:        user.ID,
				Role:          user.Role,
				Active:        user.IsActive,
				Grant:         service.ComputeEntitlements(user),
				Impersonating: verified.Impersonating,
				ActorUserID:   verified.ActorUserID,
			}

			ctx = context.WithValue(ctx, authCtxKey{}, ac)
			ctx = httpx.ContextWithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits only callers whose role is in the allowed set.
func RequireRole(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := AuthFromContext(r.Context())
			if !ok || !slices.Contains(roles, ac.Role) {
				httpx.WriteError(w, http.StatusForbidden, "insufficient_role", "role not permitted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEntitlement admits only callers holding the given entitlement.
func RequireEntitlement(e domain.Entitlement) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := AuthFromContext(r.Context())
			if !ok || !ac.Grant.Has(e) {
				httpx.WriteError(w, http.StatusForbidden, "insufficient_entitlement", "entitlement not granted")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRootAdmin gates user administration. The check goes through the
// capability, not the informational flags; flags never authorize.
func RequireRootAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := AuthFromContext(r.Context())
			if !ok || !ac.Grant.Capabilities.CanAdminUsers {
				httpx.WriteError(w, http.StatusForbidden, "insufficient_entitlement", "root admin required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireImpersonating admits only sessions minted through the impersonation
// endpoint, e.g. the exit endpoint.
func RequireImpersonating() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := AuthFromContext(r.Context())
			if !ok || !ac.Impersonating {
				httpx.WriteError(w, http.StatusForbidden, "not_impersonating", "impersonation session required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
