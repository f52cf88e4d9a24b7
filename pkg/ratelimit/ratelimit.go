package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter allows one action per user per window. A nil redis client disables it.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow reports whether the action may proceed and starts a new window if so.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func (l *Limiter) TTL(ctx context.Context, userID uuid.UUID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(userID, action)).Result()
}

func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
