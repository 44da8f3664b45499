package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

const (
	sessionCookieName = "plusone_session"
	maxJSONBodyBytes  = 1 << 20
)

type contextKey string

const userContextKey contextKey = "user"

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error("Failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeServiceError maps a service failure to a status and the message the
// user should see.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError
	var ue *services.UserError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrRequestInFlight):
		status = http.StatusConflict
	case errors.Is(err, services.ErrOnboardingComplete):
		status = http.StatusConflict
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusUnauthorized
	case errors.As(err, &ue):
		status = userErrorStatus(ue)
	}

	if status >= http.StatusInternalServerError {
		logging.Error("Request failed", map[string]interface{}{
			"path":  r.URL.Path,
			"error": err.Error(),
		})
	}
	writeError(w, status, services.Message(err))
}

// userErrorStatus passes a backend 4xx through; a rejection without a cause
// is the backend refusing the request, anything else is an upstream failure.
func userErrorStatus(ue *services.UserError) int {
	if ue.Err == nil {
		return http.StatusBadRequest
	}
	if code := backend.StatusCode(ue.Err); code >= 400 && code < 500 {
		return code
	}
	return http.StatusBadGateway
}

func GetUserFromContext(ctx context.Context) *models.CurrentUser {
	user, _ := ctx.Value(userContextKey).(*models.CurrentUser)
	return user
}

func SetUserInContext(ctx context.Context, user *models.CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// SessionCookie returns the raw session token, or "".
func SessionCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func setSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
}

// requireUser writes 401 and returns nil when no session user is present.
func requireUser(w http.ResponseWriter, r *http.Request) *models.CurrentUser {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return user
}
