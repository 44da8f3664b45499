package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
	"github.com/plusone-alumni/plusone/internal/testutil"
)

func TestPostHandler_CRUD(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser("ann@vanderbilt.edu", "Ann")
	h := NewPostHandler(services.NewPostService(env.client))

	rr := httptest.NewRecorder()
	h.Create(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/posts", models.Post{Title: "Gig", Category: models.CategoryJobs}), user))
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "error", services.ErrDescRequired.Message)

	rr = httptest.NewRecorder()
	h.Create(rr, withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/posts", models.Post{Title: "Gig", Description: "Paid", Category: models.CategoryJobs}), user))
	testutil.AssertStatusCode(t, rr, http.StatusCreated)
	var created models.Post
	testutil.DecodeJSON(t, rr, &created)
	if created.ID == "" || created.UserID != user.UserID {
		t.Fatalf("unexpected post %+v", created)
	}

	req := testutil.NewTestRequestWithJSON(t, http.MethodPut, "/api/posts/"+created.ID, models.Post{Title: "Gig (filled)", Description: "Paid", Category: models.CategoryJobs})
	req.SetPathValue("id", created.ID)
	rr = httptest.NewRecorder()
	h.Update(rr, withUser(req, user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr.Body.Bytes(), "title", "Gig (filled)")

	rr = httptest.NewRecorder()
	h.List(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/posts", nil), user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)
	var list PostListResponse
	testutil.DecodeJSON(t, rr, &list)
	if len(list.Posts) != 1 || len(list.Categories) != 4 {
		t.Fatalf("unexpected list %+v", list)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/posts/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rr = httptest.NewRecorder()
	h.Delete(rr, withUser(req, user))
	testutil.AssertStatusCode(t, rr, http.StatusOK)

	rr = httptest.NewRecorder()
	h.List(rr, withUser(httptest.NewRequest(http.MethodGet, "/api/posts", nil), user))
	var after PostListResponse
	testutil.DecodeJSON(t, rr, &after)
	if after.Posts == nil || len(after.Posts) != 0 {
		t.Fatalf("expected empty list, got %+v", after.Posts)
	}
}

func TestPostHandler_InvalidBody(t *testing.T) {
	env := newTestEnv(t)
	h := NewPostHandler(services.NewPostService(env.client))
	req := httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	rr := httptest.NewRecorder()
	h.Create(rr, withUser(req, &models.CurrentUser{UserID: "u1"}))
	testutil.AssertStatusCode(t, rr, http.StatusBadRequest)
}
