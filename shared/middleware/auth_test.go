package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/book-platform-api/shared/apperror"
	"github.com/bookhaven/book-platform-api/shared/auth"
	"github.com/bookhaven/book-platform-api/shared/httpx"
)

const (
	testIssuer = "book-platform-api"
	testSecret = "access-secret"
)

func signTestToken(t *testing.T, userID string, expiresIn time.Duration) string {
	t.Helper()

	jwtAuth := auth.NewJWTAuthenticator(testIssuer, testIssuer)
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": userID,
		"iss":    testIssuer,
		"aud":    testIssuer,
		"iat":    jwt.NewNumericDate(now),
		"exp":    jwt.NewNumericDate(now.Add(expiresIn)),
	}

	tokenStr, err := jwtAuth.GenerateToken(claims, testSecret)
	require.NoError(t, err)

	return tokenStr
}

func newProtectedHandler() http.Handler {
	jwtAuth := auth.NewJWTAuthenticator(testIssuer, testIssuer)

	return RequireAuth(jwtAuth, testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, apperror.NewInternal())
			return
		}

		httpx.RespondJSON(w, http.StatusOK, map[string]string{"userId": userID})
	}))
}

func doRequest(t *testing.T, handler http.Handler, authorization string) (*httptest.ResponseRecorder, httpx.ErrorResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var errResp httpx.ErrorResponse
	if rec.Code != http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	}

	return rec, errResp
}

func TestRequireAuthValidToken(t *testing.T) {
	handler := newProtectedHandler()
	token := signTestToken(t, "user-42", time.Minute)

	rec, _ := doRequest(t, handler, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user-42")
}

func TestRequireAuthMissingHeader(t *testing.T) {
	handler := newProtectedHandler()

	rec, errResp := doRequest(t, handler, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeUnauthorized, errResp.Error.Code)
}

func TestRequireAuthMalformedHeader(t *testing.T) {
	handler := newProtectedHandler()
	token := signTestToken(t, "user-42", time.Minute)

	for _, header := range []string{"Bearer", "Token " + token, token} {
		rec, errResp := doRequest(t, handler, header)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apperror.CodeUnauthorized, errResp.Error.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	handler := newProtectedHandler()

	rec, errResp := doRequest(t, handler, "Bearer not-a-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeUnauthorized, errResp.Error.Code)
}

// An expired token must be distinguishable from an invalid one by its error
// code, so clients know a refresh can recover the session.
func TestRequireAuthExpiredToken(t *testing.T) {
	handler := newProtectedHandler()
	token := signTestToken(t, "user-42", -time.Minute)

	rec, errResp := doRequest(t, handler, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apperror.CodeTokenExpired, errResp.Error.Code)
}
