package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/deepgram/shopfront/internal/services/session"
	"github.com/deepgram/shopfront/pkg/httpext"
)

type contextKey string

const (
	sessionClaimsKey contextKey = "sessionClaims"
)

// RequireSession rejects requests without a valid browsing session cookie and
// stores the session's claims in the request context.
func RequireSession(sessions *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessions.ValidateSession(r)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected invalid session cookie")
				httpext.JsonError(w, "Invalid session", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				httpext.JsonError(w, "Session required", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the browsing session claims from the request context
func GetSession(r *http.Request) *session.SessionClaims {
	if claims, ok := r.Context().Value(sessionClaimsKey).(*session.SessionClaims); ok {
		return claims
	}
	return nil
}

// WithSession returns a copy of r carrying claims, as RequireSession would.
func WithSession(r *http.Request, claims *session.SessionClaims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), sessionClaimsKey, claims))
}
