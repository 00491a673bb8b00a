package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/medivault/shell/internal/client"
)

var (
	// ErrMalformed is returned when the stored token is not a JWT.
	ErrMalformed = errors.New("credential: malformed token")
	// ErrExpired is returned when the token's exp claim is in the past.
	ErrExpired = errors.New("credential: token expired")
)

// Claims are the parts of the backend token the client looks at. The
// signature is never checked here; the backend does that on every call.
type Claims struct {
	jwt.RegisteredClaims
	// UserID is numeric on some backend builds.
	UserID client.ID `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Subject returns the user id claim, falling back to sub.
func (c *Claims) Subject() string {
	if c.UserID != "" {
		return string(c.UserID)
	}
	return c.RegisteredClaims.Subject
}

// ParseClaims decodes token without verifying its signature.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}

// Check reports whether token is usable at now: well formed and not expired.
// Tokens without an exp claim never expire on the client side.
func Check(token string, now time.Time) (*Claims, error) {
	claims, err := ParseClaims(token)
	if err != nil {
		return nil, err
	}
	if exp := claims.ExpiresAt; exp != nil && !now.Before(exp.Time) {
		return nil, ErrExpired
	}
	return claims, nil
}
