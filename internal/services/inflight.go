package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/plusone-alumni/plusone/internal/logging"
)

const inFlightKeyPrefix = "inflight:"

// InFlightGuard allows at most one outstanding request per user, action and
// target. A nil guard admits everything.
type InFlightGuard struct {
	redis RedisClient
	ttl   time.Duration
}

func NewInFlightGuard(redis RedisClient, ttl time.Duration) *InFlightGuard {
	return &InFlightGuard{redis: redis, ttl: ttl}
}

// Acquire claims the slot or returns ErrRequestInFlight. The returned release
// func must be called once the remote call resolves.
func (g *InFlightGuard) Acquire(ctx context.Context, userID, action, target string) (func(), error) {
	return g.acquire(ctx, inFlightKey(userID, action, target))
}

// AcquirePair claims a slot shared by both users of a pair, whichever of them
// acts.
func (g *InFlightGuard) AcquirePair(ctx context.Context, action, userA, userB string) (func(), error) {
	return g.acquire(ctx, inFlightKey("pair", action, PairKey(userA, userB)))
}

func (g *InFlightGuard) acquire(ctx context.Context, key string) (func(), error) {
	if g == nil || g.redis == nil {
		return func() {}, nil
	}

	ok, err := g.redis.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquiring in-flight slot: %w", err)
	}
	if !ok {
		return nil, ErrRequestInFlight
	}

	return func() {
		// The request context may already be cancelled.
		if err := g.redis.Del(context.Background(), key); err != nil {
			logging.Warn("Failed to release in-flight slot", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}, nil
}

func inFlightKey(userID, action, target string) string {
	return inFlightKeyPrefix + strings.Join([]string{userID, action, target}, ":")
}

// PairKey orders two user ids so both directions of a pair share one key.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}
