package auth

import (
	"context"
	"net/http"

	"github.com/oxbrook/mediavault/internal/api"
	"github.com/oxbrook/mediavault/internal/model"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireUser returns middleware that rejects requests without a valid
// session and stores the caller's identity in the request context.
func (s *Sessions) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.FromRequest(r)
		if err != nil {
			api.Unauthorized(w, "Unauthorized: sign in required")
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects non-admin callers. It must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IdentityFrom(r.Context()).Admin {
			api.Unauthorized(w, "Unauthorized: admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IdentityFrom returns the identity stored by RequireUser, or the zero
// identity when absent.
func IdentityFrom(ctx context.Context) model.Identity {
	id, _ := ctx.Value(identityKey).(model.Identity)
	return id
}
