package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plusone-alumni/plusone/internal/backend"
	"github.com/plusone-alumni/plusone/internal/config"
	"github.com/plusone-alumni/plusone/internal/fakebackend"
	"github.com/plusone-alumni/plusone/internal/handlers"
	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
	"github.com/plusone-alumni/plusone/internal/services"
)

type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(key, value)
	return nil
}

func (m *memoryRedis) setLocked(key string, value any) {
	switch v := value.(type) {
	case string:
		m.data[key] = v
	case []byte:
		m.data[key] = string(v)
	default:
		b, _ := json.Marshal(v)
		m.data[key] = string(b)
	}
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; exists {
		return false, nil
	}
	m.setLocked(key, value)
	return true, nil
}

func (m *memoryRedis) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (m *memoryRedis) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// gatedBackend holds UpdateProfile and DeletePost open while armed, so a
// second request arrives while the first is still outstanding.
type gatedBackend struct {
	services.Backend
	armed   atomic.Bool
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedBackend(b services.Backend) *gatedBackend {
	return &gatedBackend{Backend: b, entered: make(chan struct{}, 2), release: make(chan struct{})}
}

func (g *gatedBackend) wait() {
	if g.armed.Load() {
		g.calls.Add(1)
		g.entered <- struct{}{}
		<-g.release
	}
}

func (g *gatedBackend) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.ProfileResponse, error) {
	g.wait()
	return g.Backend.UpdateProfile(ctx, userID, update)
}

func (g *gatedBackend) DeletePost(ctx context.Context, id string) error {
	g.wait()
	return g.Backend.DeletePost(ctx, id)
}

func newTestServer(t *testing.T) (*httptest.Server, *fakebackend.Server) {
	t.Helper()
	return newTestServerWith(t, func(b services.Backend) services.Backend { return b })
}

// newTestServerWith lets a test wrap the backend client the router talks to.
func newTestServerWith(t *testing.T, wrap func(services.Backend) services.Backend) (*httptest.Server, *fakebackend.Server) {
	t.Helper()
	fake := fakebackend.New()
	api := httptest.NewServer(fake.Handler())
	t.Cleanup(api.Close)

	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "test", TemplatesDir: "../../web/templates"},
		Session:   config.SessionConfig{TTL: time.Hour, InFlightTTL: 5 * time.Second},
		RateLimit: config.RateLimitConfig{AuthAttempts: 20, AuthWindow: time.Minute},
	}
	client := backend.New(api.URL+"/api", 5*time.Second)
	checks := map[string]handlers.Checker{"backend": handlers.CheckerFunc(client.Ping)}
	logger := logging.New().SetOutput(&bytes.Buffer{})

	handler, err := newHandler(cfg, logger, wrap(client), &memoryRedis{data: map[string]string{}}, nil, checks)
	if err != nil {
		t.Fatalf("newHandler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, fake
}

func newHTTPClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func postJSON(t *testing.T, c *http.Client, url string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := c.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_SignupSessionFlow(t *testing.T) {
	srv, fake := newTestServer(t)
	fake.AddUser("bob@vanderbilt.edu", "secret1", "Bob", "Jones")
	c := newHTTPClient(t)

	if resp := get(t, c, srv.URL+"/api/feed"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", resp.StatusCode)
	}

	resp := postJSON(t, c, srv.URL+"/api/auth/signup", map[string]string{
		"firstName":       "Ann",
		"lastName":        "Lee",
		"email":           "ann@vanderbilt.edu",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected security headers on api responses")
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	resp = get(t, c, srv.URL+"/api/auth/me")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d", resp.StatusCode)
	}

	resp = get(t, c, srv.URL+"/api/feed")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from feed, got %d", resp.StatusCode)
	}
	var feed handlers.FeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if feed.Greeting != "Welcome back, Ann" || len(feed.Entries) != 1 || feed.Entries[0].User.FirstName != "Bob" {
		t.Fatalf("unexpected feed %+v", feed)
	}

	resp = postJSON(t, c, srv.URL+"/api/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", resp.StatusCode)
	}
	if resp := get(t, c, srv.URL+"/api/feed"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func signUp(t *testing.T, srv *httptest.Server, c *http.Client) {
	t.Helper()
	resp := postJSON(t, c, srv.URL+"/api/auth/signup", map[string]string{
		"firstName":       "Ann",
		"lastName":        "Lee",
		"email":           "ann@vanderbilt.edu",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from signup, got %d", resp.StatusCode)
	}
}

// send is safe to call off the test goroutine.
func send(c *http.Client, method, url string, body interface{}) (int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func assertDuplicateRejected(t *testing.T, gate *gatedBackend, c *http.Client, method, url string, body interface{}) {
	t.Helper()
	gate.armed.Store(true)

	type result struct {
		status int
		err    error
	}
	first := make(chan result, 1)
	go func() {
		status, err := send(c, method, url, body)
		first <- result{status, err}
	}()
	<-gate.entered

	status, err := send(c, method, url, body)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	if status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate %s %s, got %d", method, url, status)
	}

	close(gate.release)
	res := <-first
	if res.err != nil || res.status != http.StatusOK {
		t.Fatalf("expected first %s %s to succeed, got %d %v", method, url, res.status, res.err)
	}
	if n := gate.calls.Load(); n != 1 {
		t.Fatalf("expected 1 backend call, got %d", n)
	}
}

func TestServer_DuplicateOnboardingSaveRejected(t *testing.T) {
	var gate *gatedBackend
	srv, _ := newTestServerWith(t, func(b services.Backend) services.Backend {
		gate = newGatedBackend(b)
		return gate
	})
	c := newHTTPClient(t)
	signUp(t, srv, c)

	assertDuplicateRejected(t, gate, c, http.MethodPost, srv.URL+"/api/onboarding/next",
		map[string]interface{}{"step": 1, "profile": models.DefaultProfile()})
}

func TestServer_DuplicatePostDeleteRejected(t *testing.T) {
	var gate *gatedBackend
	srv, _ := newTestServerWith(t, func(b services.Backend) services.Backend {
		gate = newGatedBackend(b)
		return gate
	})
	c := newHTTPClient(t)
	signUp(t, srv, c)

	resp := postJSON(t, c, srv.URL+"/api/posts", models.Post{
		Category:    models.CategoryHousing,
		Title:       "Sublet",
		Description: "June to August",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from create, got %d", resp.StatusCode)
	}
	var post models.Post
	if err := json.NewDecoder(resp.Body).Decode(&post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	assertDuplicateRejected(t, gate, c, http.MethodDelete, srv.URL+"/api/posts/"+post.ID, nil)
}

func TestServer_FinishedOnboardingStaysFinished(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newHTTPClient(t)
	signUp(t, srv, c)

	save := map[string]interface{}{"step": 4, "profile": models.DefaultProfile()}
	if resp := postJSON(t, c, srv.URL+"/api/onboarding/finish", save); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from finish, got %d", resp.StatusCode)
	}

	save["step"] = 1
	if resp := postJSON(t, c, srv.URL+"/api/onboarding/next", save); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 after finish, got %d", resp.StatusCode)
	}

	resp := get(t, c, srv.URL+"/api/onboarding")
	var state handlers.OnboardingResponse
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode onboarding: %v", err)
	}
	if !state.Completed || state.Step != 4 {
		t.Fatalf("expected onboarding to stay complete, got %+v", state)
	}
}

func TestServer_PublicRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newHTTPClient(t)

	if resp := get(t, c, srv.URL+"/ready"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected ready, got %d", resp.StatusCode)
	}
	if resp := get(t, c, srv.URL+"/"); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected page shell, got %d", resp.StatusCode)
	}
	if resp := get(t, c, srv.URL+"/nope"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestResolveAuthRateLimit_Defaults(t *testing.T) {
	logger := logging.New().SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "production"},
		RateLimit: config.RateLimitConfig{AuthAttempts: 20},
	}

	limit := resolveAuthRateLimit(cfg, logger, func(key string) (string, bool) {
		return "", false
	})
	if limit != 20 {
		t.Fatalf("expected configured limit 20, got %d", limit)
	}
}

func TestResolveAuthRateLimit_DevelopmentDefault(t *testing.T) {
	logger := logging.New().SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "development"},
		RateLimit: config.RateLimitConfig{AuthAttempts: 20},
	}

	limit := resolveAuthRateLimit(cfg, logger, func(key string) (string, bool) {
		return "", false
	})
	if limit != 100 {
		t.Fatalf("expected dev limit 100, got %d", limit)
	}
}

func TestResolveAuthRateLimit_FromEnv(t *testing.T) {
	logger := logging.New().SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "development"},
		RateLimit: config.RateLimitConfig{AuthAttempts: 20},
	}

	limit := resolveAuthRateLimit(cfg, logger, func(key string) (string, bool) {
		return "7", true
	})
	if limit != 7 {
		t.Fatalf("expected env limit 7, got %d", limit)
	}
}

func TestResolveAuthRateLimit_InvalidEnv(t *testing.T) {
	logger := logging.New().SetOutput(&bytes.Buffer{})
	cfg := &config.Config{
		Server:    config.ServerConfig{Environment: "production"},
		RateLimit: config.RateLimitConfig{AuthAttempts: -3},
	}

	limit := resolveAuthRateLimit(cfg, logger, func(key string) (string, bool) {
		return "-3", true
	})
	if limit != defaultAuthRateLimit {
		t.Fatalf("expected fallback limit %d, got %d", defaultAuthRateLimit, limit)
	}
}
