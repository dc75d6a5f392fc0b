package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken means a token could not be decoded as a JWT
	ErrInvalidToken = errors.New("invalid session token")
	// ErrSessionExpired means the token's exp claim is in the past
	ErrSessionExpired = errors.New("session expired")
)

// Claims is the part of the backend's access token the client reads
type Claims struct {
	Subject   string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// DecodeClaims reads the token's claims without verifying the signature.
// Verification belongs to the backend; the client only needs the expiry.
func DecodeClaims(token string) (Claims, error) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the claims' expiry is before now
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
