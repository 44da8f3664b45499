package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type SessionManager interface {
	Create(ctx context.Context, user models.CurrentUser) (string, error)
	Delete(ctx context.Context, token string) error
	TTL() time.Duration
}

type AuthHandler struct {
	auth     *services.AuthService
	sessions SessionManager
	secure   bool
}

func NewAuthHandler(auth *services.AuthService, sessions SessionManager, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, secure: secure}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var form services.SignupForm
	if !decodeJSON(w, r, &form) {
		return
	}

	result, err := h.auth.Signup(r.Context(), form)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.startSession(w, r, result, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.startSession(w, r, result, http.StatusOK)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, result *services.AuthResult, status int) {
	// A previous session on this browser is replaced.
	if old := SessionCookie(r); old != "" {
		_ = h.sessions.Delete(r.Context(), old)
	}

	token, err := h.sessions.Create(r.Context(), result.User)
	if err != nil {
		logging.Error("Failed to create session", map[string]interface{}{
			"user_id": result.User.UserID,
			"error":   err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	setSessionCookie(w, token, h.sessions.TTL(), h.secure)
	writeJSON(w, status, result)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := SessionCookie(r); token != "" {
		if err := h.sessions.Delete(r.Context(), token); err != nil {
			logging.Warn("Failed to delete session", map[string]interface{}{"error": err.Error()})
		}
	}
	clearSessionCookie(w, h.secure)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}
	writeJSON(w, http.StatusOK, user)
}
