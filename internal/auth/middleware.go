package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

// Middleware parses an optional Authorization bearer token and, when it
// verifies, stores the claims on the request context. An absent or broken
// token just leaves the request anonymous; endpoints that need an account
// wrap themselves in Require.
func Middleware(tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if claims, err := tokens.Verify(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), contextKey{}, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Require rejects anonymous requests with 401.
func Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"authentication required"}`))
			return
		}
		next(w, r)
	}
}

// FromContext returns the verified claims, or nil for anonymous requests.
func FromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(contextKey{}).(*Claims)
	return claims
}
