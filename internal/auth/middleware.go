package auth

import (
	"context"
	"net/http"
)

type contextKey string

const claimsKey contextKey = "auth_claims"

// RequireUser wraps a handler so it only runs with a valid session,
// redirecting anonymous requests to the login page. The verified claims are
// placed on the request context for UserID / Username.
func (s *Sessions) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.FromRequest(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// UserID returns the authenticated user's id, or 0 when the request carries
// no session.
func UserID(ctx context.Context) uint {
	if claims, ok := ctx.Value(claimsKey).(*Claims); ok {
		return claims.UserID
	}
	return 0
}

// Username returns the authenticated user's name.
func Username(ctx context.Context) string {
	if claims, ok := ctx.Value(claimsKey).(*Claims); ok {
		return claims.Username
	}
	return ""
}
