package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "freeze-history"}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testConfig.Secret))
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "ops-runner",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeFreezesRead, ScopeFreezesWrite},
	}
}

func TestParseValidToken(t *testing.T) {
	claims, err := Parse(signToken(t, validClaims()), testConfig)
	require.NoError(t, err)
	require.Equal(t, "ops-runner", claims.Subject)
	require.True(t, claims.HasScope(ScopeFreezesRead))
	require.True(t, claims.HasScope(ScopeFreezesWrite))
	require.False(t, claims.HasScope("other:scope"))
}

func TestParseScopesAsSpaceDelimitedString(t *testing.T) {
	mc := validClaims()
	mc["scopes"] = "freezes:read freezes:write"
	claims, err := Parse(signToken(t, mc), testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeFreezesRead))
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	mc := validClaims()
	mc["iss"] = "someone-else"
	_, err := Parse(signToken(t, mc), testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	mc := validClaims()
	mc["exp"] = time.Now().Add(-time.Hour).Unix()
	_, err := Parse(signToken(t, mc), testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	mc := validClaims()
	delete(mc, "sub")
	_, err := Parse(signToken(t, mc), testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsEmptyToken(t *testing.T) {
	_, err := Parse("", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddlewareAttachesClaims(t *testing.T) {
	var got *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	mw := NewMiddleware(testConfig, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims()))

	rr := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, got)
	require.Equal(t, "ops-runner", got.Subject)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	mw := NewMiddleware(testConfig, nil)
	rr := httptest.NewRecorder()
	mw.Wrap(http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, "Bearer", rr.Header().Get("WWW-Authenticate"))
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"type":"unauthorized","detail":"missing bearer token"}`, rr.Body.String())
}

func TestMiddlewareRejectsNonBearerScheme(t *testing.T) {
	mw := NewMiddleware(testConfig, nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/records", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	rr := httptest.NewRecorder()
	mw.Wrap(http.NotFoundHandler()).ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestMiddlewareSkipper(t *testing.T) {
	mw := NewMiddleware(testConfig, func(r *http.Request) bool { return r.URL.Path == "/healthz" })

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	rr := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.True(t, called)
}
