package middleware

import (
	"context"
	"net/http"

	"github.com/eventmanager/server/internal/api/problem"
	"github.com/eventmanager/server/internal/auth"
)

type contextKeyAuth string

const claimsKey contextKeyAuth = "claims"

// BearerAuth validates the access token from the Authorization header and
// puts its claims on the request context. Every failure is a plain 401; the
// response never says whether the token was missing, malformed, or expired.
func BearerAuth(issuer *auth.TokenIssuer, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if issuer == nil {
				problem.Unauthorized(w, r, "Unauthorized", env)
				return
			}

			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Unauthorized(w, r, "Unauthorized", env)
				return
			}

			claims, err := issuer.Validate(token)
			if err != nil {
				problem.Unauthorized(w, r, "Unauthorized", env)
				return
			}

			ctx := contextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// RequestClaims returns the validated claims, or nil outside BearerAuth.
func RequestClaims(r *http.Request) *auth.Claims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
