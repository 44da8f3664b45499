package handlers

import (
	"net/http"

	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type PostListResponse struct {
	Posts      services.PostList     `json:"posts"`
	Categories []models.PostCategory `json:"categories"`
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	posts, err := h.posts.List(r.Context(), user.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if posts == nil {
		posts = services.PostList{}
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: posts, Categories: models.PostCategories})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var draft models.Post
	if !decodeJSON(w, r, &draft) {
		return
	}
	post, err := h.posts.Create(r.Context(), user.UserID, draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	var draft models.Post
	if !decodeJSON(w, r, &draft) {
		return
	}
	post, err := h.posts.Update(r.Context(), user.UserID, r.PathValue("id"), draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	if err := h.posts.Delete(r.Context(), user.UserID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Post deleted"})
}
