package server

import (
	"context"
	"net/http"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyUserID stores the authenticated user ID
	ContextKeyUserID ContextKey = "user_id"
)

// RequireAuth is middleware that validates a Bearer access token
// Used for API routes that expect an access token in the Authorization header
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID, err := s.services.Auth.ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				s.log.Debug().Err(err).Str("path", r.URL.Path).Msg("bearer rejected")
				s.writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
			next(w, r.WithContext(ctx))
		}
	}
}

// UserIDFromContext returns the user id stored by RequireAuth
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	return id, ok && id != ""
}
