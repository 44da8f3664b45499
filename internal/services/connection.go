package services

import (
	"context"
	"strings"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
)

// ConnectionService drives the request → pending → friends lifecycle. It
// never derives a status locally: every transition is a backend call and
// callers re-read Status afterwards.
type ConnectionService struct {
	backend Backend
	guard   *InFlightGuard
}

func NewConnectionService(backend Backend) *ConnectionService {
	return &ConnectionService{backend: backend}
}

// SetInFlightGuard enables duplicate-submit protection.
func (s *ConnectionService) SetInFlightGuard(guard *InFlightGuard) {
	s.guard = guard
}

func (s *ConnectionService) RequestConnection(ctx context.Context, fromUserID, toUserID, message string) (*models.ConnectionRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMessageRequired
	}
	if fromUserID == toUserID {
		return nil, ErrSelfConnection
	}

	release, err := s.guard.AcquirePair(ctx, "connect", fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.backend.CreateConnectionRequest(ctx, fromUserID, models.CreateConnectionRequest{
		ToUserID: toUserID,
		Message:  message,
	})
	if err != nil {
		return nil, remoteError("Failed to send connection request", err)
	}
	return req, nil
}

func (s *ConnectionService) Accept(ctx context.Context, requestID, approverID string) (*models.ConnectionRequest, error) {
	release, err := s.guard.Acquire(ctx, approverID, "resolve", requestID)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.backend.AcceptConnectionRequest(ctx, requestID, approverID)
	if err != nil {
		return nil, remoteError("Failed to accept request. Please try again.", err)
	}
	return req, nil
}

func (s *ConnectionService) Reject(ctx context.Context, requestID, approverID string) (*models.ConnectionRequest, error) {
	release, err := s.guard.Acquire(ctx, approverID, "resolve", requestID)
	if err != nil {
		return nil, err
	}
	defer release()

	req, err := s.backend.RejectConnectionRequest(ctx, requestID, approverID)
	if err != nil {
		return nil, remoteError("Failed to reject request. Please try again.", err)
	}
	return req, nil
}

// Status never fails: any error reads as no relationship.
func (s *ConnectionService) Status(ctx context.Context, fromUserID, toUserID string) models.ConnectionStatus {
	status, err := s.backend.ConnectionStatus(ctx, fromUserID, toUserID)
	if err != nil {
		logging.Warn("Failed to load connection status", map[string]interface{}{
			"from_user_id": fromUserID,
			"to_user_id":   toUserID,
			"error":        err.Error(),
		})
		return models.ConnectionStatusNone
	}
	if status == "" {
		return models.ConnectionStatusNone
	}
	return status
}

func (s *ConnectionService) PendingRequests(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	requests, err := s.backend.PendingRequests(ctx, userID)
	if err != nil {
		return nil, remoteError("Failed to load connection requests", err)
	}
	if requests == nil {
		requests = []models.ConnectionRequest{}
	}
	return requests, nil
}
