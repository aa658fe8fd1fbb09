package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the token's exp claim without verifying the
// signature. Verification belongs to the server; the client only wants to
// avoid presenting a token it knows is dead. Tokens without an exp claim are
// treated as unexpired.
func tokenExpired(token string, now time.Time) (bool, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return false, fmt.Errorf("parsing token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Before(now), nil
}
