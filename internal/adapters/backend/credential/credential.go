// Package credential reads claims from the backend's bearer token.
//
// The token stays opaque to the session layer: signatures are not verified
// and nothing here decides whether a session is valid. A 401 from the
// backend remains the only signal that a credential died.
package credential

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the token is not a parseable JWT.
var ErrNotJWT = errors.New("credential is not a JWT")

// Claims is the diagnostic view of a bearer token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token has no exp claim
}

// HasExpiry reports whether the token carries an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// ExpiresIn returns the time left before expiry relative to now.
// Returns 0 for tokens without expiry.
func (c Claims) ExpiresIn(now time.Time) time.Duration {
	if !c.HasExpiry() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Inspect decodes the token's registered claims without verifying its signature.
// PRE: token is the raw bearer string issued at login
// POST: Returns the claims, or ErrNotJWT for opaque tokens
func Inspect(token string) (Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &registered); err != nil {
		return Claims{}, errors.Join(ErrNotJWT, err)
	}

	claims := Claims{Subject: registered.Subject}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}
