package handlers

import (
	"net/http"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type ConnectionHandler struct {
	connections *services.ConnectionService
	myPage      *services.MyPageService
}

func NewConnectionHandler(connections *services.ConnectionService, myPage *services.MyPageService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, myPage: myPage}
}

type ConnectionRequestResponse struct {
	Request *models.ConnectionRequest `json:"request"`
	Status  models.ConnectionStatus   `json:"status"`
}

type StatusResponse struct {
	Status models.ConnectionStatus `json:"status"`
	Label  string                  `json:"label"`
}

// SendRequest creates a request and re-reads the status rather than
// assuming PENDING.
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var req models.CreateConnectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ToUserID == "" {
		writeError(w, http.StatusBadRequest, "toUserId is required")
		return
	}

	created, err := h.connections.RequestConnection(r.Context(), user.UserID, req.ToUserID, req.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ConnectionRequestResponse{
		Request: created,
		Status:  h.connections.Status(r.Context(), user.UserID, req.ToUserID),
	})
}

func (h *ConnectionHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	page, err := h.myPage.Accept(r.Context(), user.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ConnectionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	page, err := h.myPage.Reject(r.Context(), user.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ConnectionHandler) Pending(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	requests, err := h.connections.PendingRequests(r.Context(), user.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *ConnectionHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	status := h.connections.Status(r.Context(), user.UserID, r.PathValue("userId"))
	writeJSON(w, http.StatusOK, StatusResponse{Status: status, Label: status.Label()})
}
