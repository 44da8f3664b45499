package services

import (
	"context"
	"strings"

	"github.com/plusone-alumni/plusone/internal/models"
)

type PostService struct {
	backend Backend
	guard   *InFlightGuard
}

func NewPostService(backend Backend) *PostService {
	return &PostService{backend: backend}
}

// SetInFlightGuard enables duplicate-submit protection.
func (s *PostService) SetInFlightGuard(guard *InFlightGuard) {
	s.guard = guard
}

// ValidatePost checks a draft before it is sent.
func ValidatePost(post models.Post) error {
	switch {
	case strings.TrimSpace(post.Title) == "":
		return ErrTitleRequired
	case strings.TrimSpace(post.Description) == "":
		return ErrDescRequired
	case !models.IsValidCategory(post.Category):
		return ErrInvalidCategory
	}
	return nil
}

func (s *PostService) List(ctx context.Context, userID string) (PostList, error) {
	posts, err := s.backend.ListPosts(ctx, userID)
	if err != nil {
		return nil, remoteError("Failed to load posts", err)
	}
	return PostList(posts), nil
}

func (s *PostService) Create(ctx context.Context, userID string, draft models.Post) (*models.Post, error) {
	if err := ValidatePost(draft); err != nil {
		return nil, err
	}
	draft.ID = ""
	draft.UserID = userID
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)

	release, err := s.guard.Acquire(ctx, userID, "post-create", "")
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := s.backend.CreatePost(ctx, draft)
	if err != nil {
		return nil, remoteError("Failed to create post", err)
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, userID, postID string, draft models.Post) (*models.Post, error) {
	if err := ValidatePost(draft); err != nil {
		return nil, err
	}
	draft.ID = postID
	draft.UserID = userID
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Description = strings.TrimSpace(draft.Description)

	release, err := s.guard.Acquire(ctx, userID, "post-update", postID)
	if err != nil {
		return nil, err
	}
	defer release()

	post, err := s.backend.UpdatePost(ctx, postID, draft)
	if err != nil {
		return nil, remoteError("Failed to update post", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	release, err := s.guard.Acquire(ctx, userID, "post-delete", postID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.backend.DeletePost(ctx, postID); err != nil {
		return remoteError("Failed to delete post", err)
	}
	return nil
}

// PostList is the list as displayed; edits are applied in place so the page
// does not refetch.
type PostList []models.Post

func (l PostList) Remove(id string) PostList {
	out := make(PostList, 0, len(l))
	for _, p := range l {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}

// Upsert replaces the post with the same id, or prepends a new one.
func (l PostList) Upsert(post models.Post) PostList {
	for i, p := range l {
		if p.ID == post.ID {
			out := append(PostList(nil), l...)
			out[i] = post
			return out
		}
	}
	return append(PostList{post}, l...)
}
