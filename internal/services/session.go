package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/plusone-alumni/plusone/internal/models"
)

const sessionKeyPrefix = "session:"

// SessionService keeps the current-user record for browser sessions. Only the
// SHA-256 of the cookie token is used as a key.
type SessionService struct {
	redis RedisClient
	ttl   time.Duration
}

func NewSessionService(redis RedisClient, ttl time.Duration) *SessionService {
	return &SessionService{redis: redis, ttl: ttl}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Create(ctx context.Context, user models.CurrentUser) (string, error) {
	token, err := generateSessionToken()
	if err != nil {
		return "", err
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("encoding session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(token), data, s.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// Get returns the session's user and slides its expiry.
func (s *SessionService) Get(ctx context.Context, token string) (*models.CurrentUser, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	key := sessionKey(token)
	raw, err := s.redis.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var user models.CurrentUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if user.UserID == "" {
		return nil, ErrSessionNotFound
	}

	if err := s.redis.Expire(ctx, key, s.ttl); err != nil {
		return nil, fmt.Errorf("refreshing session: %w", err)
	}
	return &user, nil
}

func (s *SessionService) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.redis.Del(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
