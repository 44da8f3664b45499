package services

import (
	"context"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
)

// MyPage is the signed-in user's own page: counts, posts and incoming
// requests.
type MyPage struct {
	UserID           string                     `json:"userId"`
	FirstName        string                     `json:"firstName"`
	LastName         string                     `json:"lastName"`
	Profile          models.Profile             `json:"profile"`
	ConnectionsCount int                        `json:"connectionsCount"`
	RequestsCount    int                        `json:"requestsCount"`
	PostsCount       int                        `json:"postsCount"`
	Posts            PostList                   `json:"posts"`
	Requests         []models.ConnectionRequest `json:"requests"`
}

// RemovePost drops a deleted post and adjusts the count.
func (p *MyPage) RemovePost(id string) {
	before := len(p.Posts)
	p.Posts = p.Posts.Remove(id)
	if len(p.Posts) < before && p.PostsCount > 0 {
		p.PostsCount--
	}
}

type MyPageService struct {
	backend     Backend
	connections *ConnectionService
	posts       *PostService
}

func NewMyPageService(backend Backend, connections *ConnectionService, posts *PostService) *MyPageService {
	return &MyPageService{backend: backend, connections: connections, posts: posts}
}

func (s *MyPageService) Load(ctx context.Context, userID string) (*MyPage, error) {
	resp, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		return nil, remoteError("Failed to load your page", err)
	}

	page := &MyPage{
		UserID:           resp.UserID,
		FirstName:        resp.FirstName,
		LastName:         resp.LastName,
		Profile:          resp.Profile.Normalized(),
		ConnectionsCount: resp.ConnectionsCount,
		RequestsCount:    resp.RequestsCount,
		PostsCount:       resp.PostsCount,
		Posts:            PostList(resp.Posts),
	}
	if page.Posts == nil {
		page.Posts = PostList{}
	}

	page.Requests, err = s.connections.PendingRequests(ctx, userID)
	if err != nil {
		logging.Warn("Failed to load pending requests", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		page.Requests = []models.ConnectionRequest{}
	}
	return page, nil
}

// Accept resolves the request and reloads the page from the server.
func (s *MyPageService) Accept(ctx context.Context, userID, requestID string) (*MyPage, error) {
	if _, err := s.connections.Accept(ctx, requestID, userID); err != nil {
		return nil, err
	}
	return s.Load(ctx, userID)
}

func (s *MyPageService) Reject(ctx context.Context, userID, requestID string) (*MyPage, error) {
	if _, err := s.connections.Reject(ctx, requestID, userID); err != nil {
		return nil, err
	}
	return s.Load(ctx, userID)
}

// DeletePost deletes on the backend, then drops the post from page without a
// reload.
func (s *MyPageService) DeletePost(ctx context.Context, page *MyPage, postID string) error {
	if err := s.posts.Delete(ctx, page.UserID, postID); err != nil {
		return err
	}
	page.RemovePost(postID)
	return nil
}
