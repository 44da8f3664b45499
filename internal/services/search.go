package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/models"
)

type SearchService struct {
	backend Backend
}

func NewSearchService(backend Backend) *SearchService {
	return &SearchService{backend: backend}
}

// Search finds users by interest. A blank query makes no call.
func (s *SearchService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchResult{}, nil
	}

	results, err := s.backend.SearchUsers(ctx, query)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, &UserError{Message: fmt.Sprintf("Search failed (%d)", apiErr.StatusCode), Err: err}
		}
		return nil, &UserError{Message: "Something went wrong.", Err: err}
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}
