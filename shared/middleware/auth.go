package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bookhaven/book-platform-api/shared/apperror"
	"github.com/bookhaven/book-platform-api/shared/auth"
	"github.com/bookhaven/book-platform-api/shared/httpx"
)

type contextKey struct{}

var userClaimsKey = contextKey{}

// RequireAuth returns middleware that verifies the bearer access token on
// the request and stores its claims in the request context. Verification is
// local: no call is made back to the auth service. An expired token gets the
// TOKEN_EXPIRED code so clients know to refresh; every other failure is a
// generic 401.
func RequireAuth(jwtAuth auth.JWTAuthenticator, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				httpx.RespondError(w, apperror.NewUnauthorized("missing or malformed authorization header"))
				return
			}

			claims := jwt.MapClaims{}
			if _, err := jwtAuth.ValidateTokenWithClaims(tokenString, secret, claims); err != nil {
				if auth.IsExpired(err) {
					httpx.RespondError(w, apperror.NewTokenExpired())
					return
				}

				httpx.RespondError(w, apperror.NewUnauthorized("invalid access token"))
				return
			}

			ctx := context.WithValue(r.Context(), userClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserClaimsFromContext returns the verified token claims stored by
// RequireAuth, or false when the request was not authenticated.
func UserClaimsFromContext(ctx context.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(jwt.MapClaims)
	return claims, ok
}

// UserIDFromContext returns the authenticated user's id from the request
// context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := UserClaimsFromContext(ctx)
	if !ok {
		return "", false
	}

	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return "", false
	}

	return userID, true
}

func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
