package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")

	ErrNoSecret = errors.New("jwtx: signing secret is empty")
)

// MinSecretLength guards against accidentally deploying with a trivially
// brute-forceable HMAC secret.
const MinSecretLength = 32

// DefaultLeeway allows small clock skew when validating exp/nbf, because
// time sync is never perfect.
const DefaultLeeway = 30 * time.Second

// HS256 signs and verifies session tokens with a single shared secret.
// Issuer and audience are fixed at construction so tokens minted for a
// different deployment fail verification even under the same secret.
type HS256 struct {
	secret   []byte
	issuer   string
	audience []string
	leeway   time.Duration
}

// NewHS256 constructs an HS256 codec. It fails fast on a missing or short
// secret rather than producing tokens nobody should trust.
func NewHS256(secret []byte, issuer string, audience []string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrNoSecret
	}
	if len(secret) < MinSecretLength {
		return nil, errors.New("jwtx: signing secret must be at least 32 bytes")
	}

	return &HS256{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		leeway:   DefaultLeeway,
	}, nil
}

// Sign produces a compact JWS for the given claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(h.secret)
}

// Verify parses and validates a compact JWS. Signature, issuer, audience,
// token type, and expiry are all enforced; callers get a single class of
// error per failure mode but should collapse them before surfacing anything
// to a client.
func (h *HS256) Verify(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(h.leeway),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if err := claims.ValidateIssuer(h.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(h.audience); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateType(); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidClaim
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	default:
		return ErrInvalidClaim
	}
}
