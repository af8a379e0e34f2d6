// Package utils holds the token helpers used by the session cookie and the
// session store.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidClientToken is returned for cookies that are malformed, expired,
// signed with another key or missing the sid claim.
var ErrInvalidClientToken = errors.New("invalid client token")

// ClientToken is a signed browser-client cookie value. The sid claim keys
// the client's session namespace; it carries no identity.
type ClientToken struct {
	ClientID string
	Token    string
	Exp      time.Time
}

type clientClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// NewClientID returns a fresh random client id.
func NewClientID() string { return uuid.NewString() }

// NewClientToken builds and signs an HS256 JWT for clientID valid for ttl.
func NewClientToken(secret, clientID string, ttl time.Duration) (ClientToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := clientClaims{
		SID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return ClientToken{}, err
	}
	return ClientToken{ClientID: clientID, Token: signed, Exp: exp}, nil
}

// ParseClientToken verifies raw and returns the client id and expiry.
func ParseClientToken(secret, raw string) (ClientToken, error) {
	var claims clientClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid || claims.SID == "" {
		return ClientToken{}, ErrInvalidClientToken
	}
	return ClientToken{ClientID: claims.SID, Token: raw, Exp: claims.ExpiresAt.Time}, nil
}

// TokenExpiry reads the exp claim of a backend-issued bearer token without
// verifying its signature. The web tier does not hold the backend's key, so
// the result is only good for skipping a validation call that is bound to
// fail. ok is false when the token is not a JWT or has no exp.
func TokenExpiry(raw string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}
	at, err := claims.GetExpirationTime()
	if err != nil || at == nil {
		return time.Time{}, false
	}
	return at.Time, true
}
