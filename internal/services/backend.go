package services

import (
	"context"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/models"
)

var _ Backend = (*backend.Client)(nil)

// Backend is the subset of the PlusOne REST API the services orchestrate.
// *backend.Client satisfies it.
type Backend interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)

	RecentUsers(ctx context.Context, currentUserID string) ([]models.UserCard, error)
	CreateConnectionRequest(ctx context.Context, fromUserID string, req models.CreateConnectionRequest) (*models.ConnectionRequest, error)
	AcceptConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error)
	RejectConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error)
	ConnectionStatus(ctx context.Context, fromUserID, toUserID string) (models.ConnectionStatus, error)
	PendingRequests(ctx context.Context, userID string) ([]models.ConnectionRequest, error)

	GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.ProfileResponse, error)

	ListPosts(ctx context.Context, userID string) ([]models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, post models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error

	SearchUsers(ctx context.Context, query string) ([]models.SearchResult, error)
}
