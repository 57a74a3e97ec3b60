package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/policy-letter-api/internal/domain"
	jwtinfra "github.com/policy-letter-api/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roster map[string]bool

func (r roster) Lookup(email string) (domain.AuthorizedUser, bool) {
	return domain.AuthorizedUser{Email: email}, r[email]
}

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	p, err := jwtinfra.NewProvider([]byte("test-secret"), 24*time.Hour)
	require.NoError(t, err)
	return p
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(t *testing.T, mw func(http.Handler) http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/pdf/generate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func errorBody(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestAuth_MissingHeader(t *testing.T) {
	rr := serve(t, Auth(newTestProvider(t), nil), "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "access token required", errorBody(t, rr))
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestAuth_WrongScheme(t *testing.T) {
	rr := serve(t, Auth(newTestProvider(t), nil), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_BadToken(t *testing.T) {
	rr := serve(t, Auth(newTestProvider(t), nil), "Bearer not-a-real-token")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "invalid or expired token", errorBody(t, rr))
}

func TestAuth_ExpiredToken(t *testing.T) {
	claims := &jwtinfra.Claims{
		Email: "staff@nicl.mu",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	rr := serve(t, Auth(newTestProvider(t), nil), "Bearer "+signed)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuth_EmailLeftRoster(t *testing.T) {
	p := newTestProvider(t)
	signed, _, err := p.Sign("gone@nicl.mu")
	require.NoError(t, err)

	rr := serve(t, Auth(p, roster{"staff@nicl.mu": true}), "Bearer "+signed)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newTestProvider(t)
	signed, _, err := p.Sign("staff@nicl.mu")
	require.NoError(t, err)

	var gotClaims *jwtinfra.Claims
	captureHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()
	Auth(p, roster{"staff@nicl.mu": true})(captureHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "staff@nicl.mu", gotClaims.Email)
}
