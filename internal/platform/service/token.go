package service

import (
	"context"
	"errors"
	"time"

	"github.com/lecternhq/lectern/internal/platform/domain"
	"github.com/lecternhq/lectern/internal/platform/store"
	"github.com/lecternhq/lectern/pkg/cryptox"
	"github.com/lecternhq/lectern/pkg/jwtx"
	"github.com/lecternhq/lectern/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrWrongTokenType     = errors.New("wrong_token_type")
	ErrAccountDisabled    = errors.New("account_disabled")
)

// TokenService is the token authority: it mints and verifies the signed
// session tokens for the platform. There is no server-side revocation list;
// a token is valid iff its signature checks out and it has not expired.
type TokenService struct {
	Codec      *jwtx.HS256
	Store      store.Store
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies a username/password pair and mints a fresh token pair.
// Unknown usernames and wrong passwords produce the same error so callers
// can't probe for valid accounts.
func (s *TokenService) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("login failed", "username", username)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		l.Info("login attempt on disabled account", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	return s.Issue(user.ID)
}

// Issue mints an access/refresh token pair for the given user. Both tokens
// share the same issued-at instant and differ only in type and TTL.
func (s *TokenService) Issue(userID string) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.Codec.Sign(
		jwtx.NewClaims(userID, jwtx.TokenTypeAccess, s.AccessTTL, s.Issuer, s.Audience, now))
	if err != nil {
		return nil, err
	}

	refresh, err := s.Codec.Sign(
		jwtx.NewClaims(userID, jwtx.TokenTypeRefresh, s.RefreshTTL, s.Issuer, s.Audience, now))
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		AccessTTL:    s.AccessTTL,
		RefreshToken: refresh,
		RefreshTTL:   s.RefreshTTL,
		TokenType:    "Bearer",
	}, nil
}

// IssueImpersonation mints an access-only token whose subject is the target
// user, flagged as impersonation and carrying the real actor. Impersonation
// tokens are never valid as refresh tokens.
func (s *TokenService) IssueImpersonation(actorUserID, targetUserID string) (*domain.ImpersonationToken, error) {
	now := time.Now().UTC()

	claims := jwtx.NewClaims(targetUserID, jwtx.TokenTypeAccess, s.AccessTTL, s.Issuer, s.Audience, now)
	claims.Impersonating = true
	claims.ActorUserID = actorUserID

	access, err := s.Codec.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &domain.ImpersonationToken{
		AccessToken: access,
		AccessTTL:   s.AccessTTL,
		TokenType:   "Bearer",
	}, nil
}

// Verify validates a raw token and extracts what authorization needs. Every
// verification failure collapses to ErrInvalidToken; the underlying cause is
// for logs only, never clients.
func (s *TokenService) Verify(ctx context.Context, raw string) (domain.VerifiedToken, error) {
	claims, err := s.Codec.Verify(raw)
	if err != nil {
		slogx.FromContext(ctx).Warn("token verification failed", "err", err)
		return domain.VerifiedToken{}, ErrInvalidToken
	}

	return domain.VerifiedToken{
		UserID:        claims.Subject,
		Type:          claims.TokenType,
		Impersonating: claims.Impersonating,
		ActorUserID:   claims.ActorUserID,
	}, nil
}

// Refresh exchanges a refresh token for a new access/refresh pair. It
// rejects access tokens at this gate and refuses impersonation-flagged
// tokens outright so a refresh can never resurrect an impersonation session.
func (s *TokenService) Refresh(ctx context.Context, raw string) (*domain.TokenPair, error) {
	verified, err := s.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}

	if verified.Type != jwtx.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	if verified.Impersonating {
		slogx.FromContext(ctx).Warn("refresh attempted with impersonation token",
			"user_id", verified.UserID, "actor_user_id", verified.ActorUserID)
		return nil, ErrInvalidToken
	}

	// Token validity and account validity are independent checks; a valid
	// refresh token for a disabled account still gets nothing.
	user, err := s.Store.Users().GetUserByID(ctx, verified.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.Issue(user.ID)
}
