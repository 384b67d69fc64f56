// Package types holds the token payloads exchanged with clients and the
// claim structures embedded in the platform's JWTs.
package types

import "github.com/golang-jwt/jwt/v5"

// Tokens is the access/refresh pair returned by register, login and refresh.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessTokenClaims is the payload of the short-lived access token. It is
// verified locally by other services, so it carries everything they need for
// authorization decisions.
type AccessTokenClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims is the payload of the refresh token. It identifies the
// user only; all other state lives in the server-side registry.
type RefreshTokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
