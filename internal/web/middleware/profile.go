package middleware

import (
	"context"
	"net/http"

	"github.com/vzeefun/vzee/internal/services/identity"
)

const (
	usernameContextKey contextKey = "username"
)

// GetUsername retrieves the signed-in user's username from the request context
// Returns empty string if the user has not claimed one
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(usernameContextKey).(string)
	return username
}

// CurrentProfile returns middleware that looks up the signed-in user's
// username and adds it to the context. Requires auth middleware first.
func CurrentProfile(identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r.Context())
			ctx := r.Context()

			if user != nil {
				profile, err := identityService.ProfileForUser(ctx, user.ID)
				if err == nil {
					ctx = context.WithValue(ctx, usernameContextKey, profile.Username)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
