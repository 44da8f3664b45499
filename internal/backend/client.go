// Package backend is the HTTP client for the PlusOne REST API. It performs no
// retries and no caching: each call is a single round trip whose result is
// handed back to the caller unchanged.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plusone-alumni/plusone/internal/logging"
	"github.com/plusone-alumni/plusone/internal/models"
)

const maxResponseBytes = 4 << 20

// APIError is returned for any non-2xx backend response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// StatusCode extracts the HTTP status from an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logging.Default.WithField("component", "backend"),
	}
}

func (c *Client) SetLogger(logger *logging.Logger) {
	c.logger = logger.WithField("component", "backend")
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", map[string]interface{}{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("Backend request", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return resp, nil
}

// call performs a request and decodes a 2xx JSON body into out (if non-nil).
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		return body.Error
	}
	return ""
}

// Signup and Login return the backend's AuthResponse even on 4xx, since the
// backend reports validation failures as a message in the body.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	return c.auth(ctx, "/auth/signup", req)
}

func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return c.auth(ctx, "/auth/login", req)
}

func (c *Client) auth(ctx context.Context, path string, body any) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.call(ctx, http.MethodPost, path, nil, body, &out)
	if err == nil {
		return &out, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &models.AuthResponse{Message: apiErr.Message}, nil
	}
	return nil, err
}

func (c *Client) RecentUsers(ctx context.Context, currentUserID string) ([]models.UserCard, error) {
	var out []models.UserCard
	err := c.call(ctx, http.MethodGet, "/connections/recent-users", url.Values{"currentUserId": {currentUserID}}, nil, &out)
	return out, err
}

func (c *Client) CreateConnectionRequest(ctx context.Context, fromUserID string, req models.CreateConnectionRequest) (*models.ConnectionRequest, error) {
	var out models.ConnectionRequest
	if err := c.call(ctx, http.MethodPost, "/connections/request", url.Values{"fromUserId": {fromUserID}}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AcceptConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error) {
	return c.resolveRequest(ctx, "accept", requestID, userID)
}

func (c *Client) RejectConnectionRequest(ctx context.Context, requestID, userID string) (*models.ConnectionRequest, error) {
	return c.resolveRequest(ctx, "reject", requestID, userID)
}

func (c *Client) resolveRequest(ctx context.Context, action, requestID, userID string) (*models.ConnectionRequest, error) {
	var out models.ConnectionRequest
	path := "/connections/" + action + "/" + url.PathEscape(requestID)
	if err := c.call(ctx, http.MethodPost, path, url.Values{"userId": {userID}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConnectionStatus accepts both a bare text body and a JSON string.
func (c *Client) ConnectionStatus(ctx context.Context, fromUserID, toUserID string) (models.ConnectionStatus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/connections/status", url.Values{
		"fromUserId": {fromUserID},
		"toUserId":   {toUserID},
	}, nil)
	if err != nil {
		return models.ConnectionStatusNone, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return models.ConnectionStatusNone, fmt.Errorf("reading status: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ConnectionStatusNone, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return models.ParseConnectionStatus(string(data)), nil
}

func (c *Client) PendingRequests(ctx context.Context, userID string) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	err := c.call(ctx, http.MethodGet, "/connections/pending-requests", url.Values{"userId": {userID}}, nil, &out)
	return out, err
}

func (c *Client) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	var out models.ProfileResponse
	if err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(userID)+"/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.ProfileResponse, error) {
	var out models.ProfileResponse
	if err := c.call(ctx, http.MethodPut, "/users/"+url.PathEscape(userID)+"/profile", nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPosts(ctx context.Context, userID string) ([]models.Post, error) {
	var out []models.Post
	err := c.call(ctx, http.MethodGet, "/posts", url.Values{"userId": {userID}}, nil, &out)
	return out, err
}

func (c *Client) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	var out models.Post
	if err := c.call(ctx, http.MethodPost, "/posts", nil, post, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, post models.Post) (*models.Post, error) {
	var out models.Post
	if err := c.call(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), nil, post, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]models.SearchResult, error) {
	var out []models.SearchResult
	err := c.call(ctx, http.MethodGet, "/users/search", url.Values{"q": {query}}, nil, &out)
	return out, err
}

// Ping checks the backend answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/auth/test", nil, nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}
