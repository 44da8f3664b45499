package services

import (
	"context"
	"errors"
	"testing"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/models"
)

func TestSearchService_BlankQueryMakesNoCall(t *testing.T) {
	client, fake := newFakeBackend(t)
	results, err := NewSearchService(client).Search(context.Background(), "   ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", results)
	}
	if fake.Hits("GET /api/users/search") != 0 {
		t.Fatal("expected no backend call")
	}
}

func TestSearchService_MatchesInterests(t *testing.T) {
	client, fake := newFakeBackend(t)
	userID := fake.AddUser("ann@vanderbilt.edu", "secret1", "Ann", "Lee")
	fake.AddUser("bob@vanderbilt.edu", "secret1", "Bob", "Ray")

	tracker := NewOnboardingTracker(client, userID)
	tracker.ToggleInterest("Live Music & Concerts")
	if err := tracker.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}

	results, err := NewSearchService(client).Search(context.Background(), " MUSIC ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != userID {
		t.Fatalf("expected only ann, got %+v", results)
	}
}

func TestSearchService_ErrorMessages(t *testing.T) {
	svc := NewSearchService(&stubBackend{
		SearchUsersFunc: func(ctx context.Context, query string) ([]models.SearchResult, error) {
			if query == "api" {
				return nil, &backend.APIError{StatusCode: 503}
			}
			return nil, errors.New("dial")
		},
	})

	_, err := svc.Search(context.Background(), "api")
	if Message(err) != "Search failed (503)" {
		t.Fatalf("unexpected message %q", Message(err))
	}
	_, err = svc.Search(context.Background(), "net")
	if Message(err) != "Something went wrong." {
		t.Fatalf("unexpected message %q", Message(err))
	}
}
