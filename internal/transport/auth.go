package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

// TokenValidator checks a bearer token.
type TokenValidator interface {
	Lookup(ctx context.Context, token string) error
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "Bearer "))
}

// AuthMiddleware enforces bearer token authentication. The health endpoint
// stays open.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			if err := validator.Lookup(r.Context(), token); err != nil {
				writeErrorCode(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
