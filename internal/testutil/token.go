// Package testutil holds fakes shared by package tests: a signed test token
// and an in-process push broker.
package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MintToken returns an HS256 token for userID. ttl > 0 sets exp in the
// future, ttl < 0 in the past, ttl == 0 omits exp.
func MintToken(t testing.TB, userID string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":    userID,
		"userId": userID,
		"iat":    time.Now().Unix(),
	}
	if ttl != 0 {
		claims["exp"] = time.Now().Add(ttl).Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
