package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/policy-letter-api/internal/domain"
	jwtinfra "github.com/policy-letter-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
}

// Roster is consulted on every request so removed staff lose access before
// their token expires.
type Roster interface {
	Lookup(email string) (domain.AuthorizedUser, bool)
}

// Auth returns middleware that validates the Bearer JWT and injects claims into context.
// A nil roster skips the allow-list check.
func Auth(verifier TokenVerifier, roster Roster) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "access token required")
				return
			}
			claims, err := verifier.Verify(tokenStr)
			if err != nil {
				writeJSONError(w, http.StatusForbidden, "invalid or expired token")
				return
			}
			if roster != nil {
				if _, ok := roster.Lookup(claims.Email); !ok {
					writeJSONError(w, http.StatusForbidden, "email not authorized")
					return
				}
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
