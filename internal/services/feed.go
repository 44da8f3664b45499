package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/plusone-alumni/plusone/internal/models"
)

const feedStatusConcurrency = 4

type FeedService struct {
	backend     Backend
	connections *ConnectionService
}

func NewFeedService(backend Backend, connections *ConnectionService) *FeedService {
	return &FeedService{backend: backend, connections: connections}
}

// Feed returns the recent users with the viewer's status toward each one.
// Order follows the backend.
func (s *FeedService) Feed(ctx context.Context, viewerID string) ([]models.FeedEntry, error) {
	users, err := s.backend.RecentUsers(ctx, viewerID)
	if err != nil {
		return nil, remoteError("Failed to load users", err)
	}

	entries := make([]models.FeedEntry, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(feedStatusConcurrency)
	for i, user := range users {
		entries[i].User = user
		g.Go(func() error {
			entries[i].Status = s.connections.Status(gctx, viewerID, user.UserID)
			return nil
		})
	}
	_ = g.Wait()

	return entries, nil
}
