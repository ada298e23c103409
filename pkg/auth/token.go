package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// InspectAccessToken parses the bearer token without verifying its signature
// and rejects tokens that are malformed or already expired. Signature
// verification belongs to the marketplace services that consume the token.
func InspectAccessToken(tokenString string, now time.Time) (*AccessTokenClaims, error) {
	trimmed := strings.TrimSpace(tokenString)
	if trimmed == "" {
		return nil, fmt.Errorf("access token is required")
	}

	claims := &AccessTokenClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(trimmed, claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	if claims.ExpiresAt != nil && now.After(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("access token expired at %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	}

	return claims, nil
}
