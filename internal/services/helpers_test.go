package services

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/fakebackend"
	"github.com/plusone-alumni/plusone/internal/models"
)

// newFakeBackend starts the in-memory PlusOne backend and returns a client
// pointed at it.
func newFakeBackend(t *testing.T) (*backend.Client, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New()
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)
	return backend.New(srv.URL+"/api", 5*time.Second), fake
}

type fakeRedisEntry struct {
	value   string
	expires time.Time
}

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]fakeRedisEntry
	err     error
	expired []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]fakeRedisEntry)}
}

func (f *fakeRedis) store(key string, value any, ttl time.Duration) {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	}
	f.data[key] = fakeRedisEntry{value: s, expires: time.Now().Add(ttl)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.store(key, value, expiration)
	return nil
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if e, ok := f.data[key]; ok && time.Now().Before(e.expires) {
		return false, nil
	}
	f.store(key, value, expiration)
	return true, nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	e, ok := f.data[key]
	if !ok || time.Now().After(e.expires) {
		return "", redis.Nil
	}
	return e.value, nil
}

func (f *fakeRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if e, ok := f.data[key]; ok {
		e.expires = time.Now().Add(expiration)
		f.data[key] = e
		f.expired = append(f.expired, key)
	}
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

// stubBackend answers every call with the matching Func, or a zero value.
type stubBackend struct {
	SignupFunc                  func(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	LoginFunc                   func(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	RecentUsersFunc             func(ctx context.Context, currentUserID string) ([]models.UserCard, error)
	CreateConnectionRequestFunc func(ctx context.Context, fromUserID string, req models.CreateConnectionRequest) (*models.ConnectionRequest, error)
	AcceptConnectionRequestFunc func(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error)
	RejectConnectionRequestFunc func(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error)
	ConnectionStatusFunc        func(ctx context.Context, fromUserID, toUserID string) (models.ConnectionStatus, error)
	PendingRequestsFunc         func(ctx context.Context, userID string) ([]models.ConnectionRequest, error)
	GetProfileFunc              func(ctx context.Context, userID string) (*models.ProfileResponse, error)
	UpdateProfileFunc           func(ctx context.Context, userID string, update models.ProfileUpdate) (*models.ProfileResponse, error)
	ListPostsFunc               func(ctx context.Context, userID string) ([]models.Post, error)
	CreatePostFunc              func(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePostFunc              func(ctx context.Context, id string, post models.Post) (*models.Post, error)
	DeletePostFunc              func(ctx context.Context, id string) error
	SearchUsersFunc             func(ctx context.Context, query string) ([]models.SearchResult, error)
}

func (s *stubBackend) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	if s.SignupFunc != nil {
		return s.SignupFunc(ctx, req)
	}
	return &models.AuthResponse{}, nil
}

func (s *stubBackend) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if s.LoginFunc != nil {
		return s.LoginFunc(ctx, req)
	}
	return &models.AuthResponse{}, nil
}

func (s *stubBackend) RecentUsers(ctx context.Context, currentUserID string) ([]models.UserCard, error) {
	if s.RecentUsersFunc != nil {
		return s.RecentUsersFunc(ctx, currentUserID)
	}
	return nil, nil
}

func (s *stubBackend) CreateConnectionRequest(ctx context.Context, fromUserID string, req models.CreateConnectionRequest) (*models.ConnectionRequest, error) {
	if s.CreateConnectionRequestFunc != nil {
		return s.CreateConnectionRequestFunc(ctx, fromUserID, req)
	}
	return &models.ConnectionRequest{}, nil
}

func (s *stubBackend) AcceptConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error) {
	if s.AcceptConnectionRequestFunc != nil {
		return s.AcceptConnectionRequestFunc(ctx, requestID, userID)
	}
	return &models.ConnectionRequest{}, nil
}

func (s *stubBackend) RejectConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error) {
	if s.RejectConnectionRequestFunc != nil {
		return s.RejectConnectionRequestFunc(ctx, requestID, userID)
	}
	return &models.ConnectionRequest{}, nil
}

func (s *stubBackend) ConnectionStatus(ctx context.Context, fromUserID, toUserID string) (models.ConnectionStatus, error) {
	if s.ConnectionStatusFunc != nil {
		return s.ConnectionStatusFunc(ctx, fromUserID, toUserID)
	}
	return models.ConnectionStatusNone, nil
}

func (s *stubBackend) PendingRequests(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	if s.PendingRequestsFunc != nil {
		return s.PendingRequestsFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubBackend) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	if s.GetProfileFunc != nil {
		return s.GetProfileFunc(ctx, userID)
	}
	return &models.ProfileResponse{UserID: userID}, nil
}

func (s *stubBackend) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.ProfileResponse, error) {
	if s.UpdateProfileFunc != nil {
		return s.UpdateProfileFunc(ctx, userID, update)
	}
	return &models.ProfileResponse{UserID: userID, Profile: update.Profile}, nil
}

func (s *stubBackend) ListPosts(ctx context.Context, userID string) ([]models.Post, error) {
	if s.ListPostsFunc != nil {
		return s.ListPostsFunc(ctx, userID)
	}
	return nil, nil
}

func (s *stubBackend) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	if s.CreatePostFunc != nil {
		return s.CreatePostFunc(ctx, post)
	}
	return &post, nil
}

func (s *stubBackend) UpdatePost(ctx context.Context, id string, post models.Post) (*models.Post, error) {
	if s.UpdatePostFunc != nil {
		return s.UpdatePostFunc(ctx, id, post)
	}
	return &post, nil
}

func (s *stubBackend) DeletePost(ctx context.Context, id string) error {
	if s.DeletePostFunc != nil {
		return s.DeletePostFunc(ctx, id)
	}
	return nil
}

func (s *stubBackend) SearchUsers(ctx context.Context, query string) ([]models.SearchResult, error) {
	if s.SearchUsersFunc != nil {
		return s.SearchUsersFunc(ctx, query)
	}
	return nil, nil
}
