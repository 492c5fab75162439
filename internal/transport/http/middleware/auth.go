package middleware

import (
	"context"
	"log/slog"
	"net/http"

	jwtinfra "github.com/plant-catalog-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// TokenVerifier decodes session tokens. Verify must not reject on expiry;
// Expired classifies the decoded claims separately.
type TokenVerifier interface {
	Verify(token string) (*jwtinfra.Claims, error)
	Expired(c *jwtinfra.Claims) bool
}

// VerifyToken rejects requests without a session cookie or whose token fails
// signature or structure checks.
func VerifyToken(v TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyCookie(w, r, v, cookieName)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims)))
		})
	}
}

// VerifyTokenExpiry re-reads and re-verifies the cookie, then rejects tokens
// whose expiry has passed.
func VerifyTokenExpiry(v TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyCookie(w, r, v, cookieName)
			if !ok {
				return
			}
			if v.Expired(claims) {
				writeJSONError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims)))
		})
	}
}

// Session chains VerifyToken and VerifyTokenExpiry.
func Session(v TokenVerifier, cookieName string) func(http.Handler) http.Handler {
	presence := VerifyToken(v, cookieName)
	expiry := VerifyTokenExpiry(v, cookieName)
	return func(next http.Handler) http.Handler {
		return presence(expiry(next))
	}
}

func verifyCookie(w http.ResponseWriter, r *http.Request, v TokenVerifier, cookieName string) (*jwtinfra.Claims, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	claims, err := v.Verify(c.Value)
	if err != nil {
		slog.DebugContext(r.Context(), "session token rejected", "err", err)
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return claims, true
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
