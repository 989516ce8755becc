package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Dan9191/todo-service/internal/utils"
	"github.com/gorilla/mux"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator validates bearer tokens
type Authenticator interface {
	Authenticate(token string) (*utils.Claims, error)
}

// ErrorWriter renders an authentication failure
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token claims in the request context.
func AuthMiddleware(auth Authenticator, onError ErrorWriter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := auth.Authenticate(BearerToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// A header with another scheme is returned whole so that it fails verification.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		if strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return header
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return header
	}
	return strings.TrimSpace(token)
}

// WithClaims stores token claims in ctx
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok && claims != nil
}
