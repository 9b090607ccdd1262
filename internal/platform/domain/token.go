package domain

import "time"

// TokenPair is what the login and refresh endpoints return: a short-lived
// access token and a long-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	AccessTTL    time.Duration `json:"-"`
	RefreshToken string        `json:"refresh_token"`
	RefreshTTL   time.Duration `json:"-"`
	TokenType    string        `json:"token_type,omitempty"` // always "Bearer"
}

// ImpersonationToken is the access-only credential minted when an admin
// starts acting as another user. It can never be refreshed.
type ImpersonationToken struct {
	AccessToken string        `json:"access_token"`
	AccessTTL   time.Duration `json:"-"`
	TokenType   string        `json:"token_type,omitempty"`
}

// VerifiedToken is the outcome of token verification, stripped down to what
// authorization needs.
type VerifiedToken struct {
	UserID        string
	Type          string // "access" or "refresh"
	Impersonating bool
	ActorUserID   string
}
