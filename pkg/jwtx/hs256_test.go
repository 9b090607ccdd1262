package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T) *HS256 {
	t.Helper()
	codec, err := NewHS256(testSecret, "lectern", []string{"lectern-api"})
	require.NoError(t, err)
	return codec
}

func TestNewHS256RejectsBadSecrets(t *testing.T) {
	t.Parallel()

	_, err := NewHS256(nil, "lectern", nil)
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = NewHS256([]byte("short"), "lectern", nil)
	require.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	now := time.Now().UTC()
	claims := NewClaims("user-1", TokenTypeAccess, time.Hour, "lectern", []string{"lectern-api"}, now)

	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	got, err := codec.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, TokenTypeAccess, got.TokenType)
	require.False(t, got.Impersonating)
	require.NotEmpty(t, got.ID) // jti is always minted
}

func TestVerifyRejectsWrongIssuerAndAudience(t *testing.T) {
	t.Parallel()

	// Same secret, different deployment identity.
	other, err := NewHS256(testSecret, "someone-else", []string{"other-api"})
	require.NoError(t, err)

	now := time.Now().UTC()
	raw, err := other.Sign(NewClaims("user-1", TokenTypeAccess, time.Hour, "someone-else", []string{"other-api"}, now))
	require.NoError(t, err)

	codec := newTestCodec(t)
	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrIssuer)

	// Right issuer, wrong audience.
	raw, err = codec.Sign(NewClaims("user-1", TokenTypeAccess, time.Hour, "lectern", []string{"other-api"}, now))
	require.NoError(t, err)
	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrAudience)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	// Issued well in the past so the leeway window can't save it.
	iat := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := codec.Sign(NewClaims("user-1", TokenTypeAccess, time.Minute, "lectern", []string{"lectern-api"}, iat))
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	raw, err := codec.Sign(NewClaims("user-1", TokenTypeAccess, time.Hour, "lectern", []string{"lectern-api"}, time.Now().UTC()))
	require.NoError(t, err)

	_, err = codec.Verify(raw + "x")
	require.Error(t, err)

	_, err = codec.Verify("not-even-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsUnknownTokenType(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	claims := NewClaims("user-1", "session", time.Hour, "lectern", []string{"lectern-api"}, time.Now().UTC())
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidClaim)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	t.Parallel()
	codec := newTestCodec(t)

	claims := NewClaims("", TokenTypeAccess, time.Hour, "lectern", []string{"lectern-api"}, time.Now().UTC())
	raw, err := codec.Sign(claims)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidClaim)
}
