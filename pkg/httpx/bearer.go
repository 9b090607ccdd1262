package httpx

import (
	"net/http"
	"strings"
)

// BearerToken extracts the bearer credential from the Authorization header.
// The second return is false when the header is absent or not bearer-shaped.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	if raw == "" {
		return "", false
	}
	return raw, true
}
