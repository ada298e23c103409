package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenClaims is the subset of the marketplace access token this side
// cares about. The remote services verify signatures; the session core only
// inspects claims to gate the login transition.
type AccessTokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
