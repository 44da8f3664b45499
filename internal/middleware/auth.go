package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/plusone-alumni/plusone/internal/handlers"
	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type SessionLoader interface {
	Get(ctx context.Context, token string) (*models.CurrentUser, error)
}

type AuthMiddleware struct {
	sessions SessionLoader
}

func NewAuthMiddleware(sessions SessionLoader) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate attaches the session user to the request context when the
// cookie names a live session. Anonymous requests pass through.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := handlers.SessionCookie(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.sessions.Get(r.Context(), token)
		if err != nil {
			if !errors.Is(err, services.ErrSessionNotFound) {
				logging.Warn("Session lookup failed", map[string]interface{}{"error": err.Error()})
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.SetUserInContext(r.Context(), user)))
	})
}

func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handlers.GetUserFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
