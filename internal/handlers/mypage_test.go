package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
	"github.com/plusone-alumni/plusone/internal/testutil"
)

func TestMyPageHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	ann := env.addUser("ann@vanderbilt.edu", "Ann")
	bob := env.addUser("bob@vanderbilt.edu", "Bob")
	ctx := context.Background()

	connections := services.NewConnectionService(env.client)
	posts := services.NewPostService(env.client)
	if _, err := connections.RequestConnection(ctx, bob.UserID, ann.UserID, "hey"); err != nil {
		t.Fatalf("RequestConnection: %v", err)
	}
	if _, err := posts.Create(ctx, ann.UserID, models.Post{Title: "Party", Description: "Friday", Category: models.CategoryEvents}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	h := NewMyPageHandler(services.NewMyPageService(env.client, connections, posts))
	rr := httptest.NewRecorder()
	h.Get(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/me/page", nil), ann))
	testutil.AssertStatusCode(t, rr, http.StatusOK)

	var page services.MyPage
	testutil.DecodeJSON(t, rr, &page)
	if page.FirstName != "Ann" || page.PostsCount != 1 || len(page.Posts) != 1 || page.RequestsCount != 1 || len(page.Requests) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Requests[0].FromUserID != bob.UserID {
		t.Fatalf("expected request from bob, got %+v", page.Requests[0])
	}
}
