package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/staylane/bookings/internal/http/response"
	"github.com/staylane/bookings/pkg/auth"
	"github.com/staylane/bookings/pkg/logger"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// RequireJWT verifies the bearer token against the shared signing secret
// and stores the claims on the request context. Missing or invalid
// tokens get a uniform 401.
func RequireJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "invalid authorization header")
				return
			}
			raw := strings.TrimPrefix(authz, "Bearer ")
			claims, err := auth.Parse(raw, secret)
			if err != nil {
				response.Unauthorized(w, "invalid authorization token")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(CtxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
