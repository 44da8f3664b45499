package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plusone-alumni/plusone/internal/services"
	"github.com/plusone-alumni/plusone/internal/testutil"
)

func TestSearchHandler_Search(t *testing.T) {
	env := newTestEnv(t)
	ann := env.addUser("ann@vanderbilt.edu", "Ann")
	tracker := services.NewOnboardingTracker(env.client, ann.UserID)
	tracker.ToggleInterest("Coffee Chats")
	if err := tracker.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	h := NewSearchHandler(services.NewSearchService(env.client))

	rr := httptest.NewRecorder()
	h.Search(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/search?q=coffee", nil), ann))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	var resp SearchResponse
	testutil.DecodeJSON(t, rr, &resp)
	if len(resp.Results) != 1 || resp.Results[0].FirstName != "Ann" {
		t.Fatalf("unexpected results %+v", resp.Results)
	}

	rr = httptest.NewRecorder()
	h.Search(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/search?q=+", nil), ann))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	var empty SearchResponse
	testutil.DecodeJSON(t, rr, &empty)
	if empty.Results == nil || len(empty.Results) != 0 {
		t.Fatalf("expected empty results, got %+v", empty.Results)
	}
	if env.fake.Hits("GET /api/users/search") != 1 {
		t.Fatalf("expected exactly one backend search, got %d", env.fake.Hits("GET /api/users/search"))
	}
}
