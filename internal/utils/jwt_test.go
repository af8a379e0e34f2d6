package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret-0123456789"

func TestClientTokenRoundTrip(t *testing.T) {
	id := NewClientID()
	tok, err := NewClientToken(secret, id, time.Hour)
	require.NoError(t, err)

	got, err := ParseClientToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, id, got.ClientID)
	assert.WithinDuration(t, tok.Exp, got.Exp, time.Second)
}

func TestClientTokenRejectsTampering(t *testing.T) {
	tok, err := NewClientToken(secret, "abc", time.Hour)
	require.NoError(t, err)

	_, err = ParseClientToken("another-secret-987654", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidClientToken)

	expired, err := NewClientToken(secret, "abc", -time.Minute)
	require.NoError(t, err)
	_, err = ParseClientToken(secret, expired.Token)
	assert.ErrorIs(t, err, ErrInvalidClientToken)

	_, err = ParseClientToken(secret, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidClientToken)
}

func TestClientTokenRequiresSid(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseClientToken(secret, raw)
	assert.ErrorIs(t, err, ErrInvalidClientToken)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-key-we-never-see"))
	require.NoError(t, err)

	got, ok := TokenExpiry(raw)
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)
}
