package handlers

import (
	"net/http"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

type FeedResponse struct {
	Greeting string             `json:"greeting"`
	Entries  []models.FeedEntry `json:"entries"`
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	entries, err := h.feed.Feed(r.Context(), user.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, FeedResponse{
		Greeting: "Welcome back, " + user.DisplayName(),
		Entries:  entries,
	})
}
