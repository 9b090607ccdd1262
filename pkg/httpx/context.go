package httpx

import "context"

type ctxKey string

// CtxKeyUserID carries the authenticated user's ID. Set by the platform's
// auth middleware; consumed here only for per-user rate limiting.
const CtxKeyUserID ctxKey = "user_id"

// ContextWithUserID attaches the authenticated user ID for downstream
// httpx consumers.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}
