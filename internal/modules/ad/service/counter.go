package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"anoa.com/wanderhub/internal/entity"
	adRepo "anoa.com/wanderhub/internal/modules/ad/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pendingCountersKey = "pending:ad_counters"

// Counter records ad impressions and clicks without reading the current
// value first.
type Counter interface {
	Record(ctx context.Context, adID int64, counter entity.AdCounter) error
	// Flush moves buffered counts to the database and returns how many ads
	// were updated.
	Flush(ctx context.Context) (int, error)
}

// NewCounter buffers in redis when a client is given and writes straight to
// the database otherwise.
func NewCounter(repo adRepo.Repository, rdb *redis.Client, log *zap.SugaredLogger) Counter {
	if rdb == nil {
		return &dbCounter{repo: repo}
	}
	return &redisCounter{repo: repo, rdb: rdb, log: log}
}

type dbCounter struct {
	repo adRepo.Repository
}

func (c *dbCounter) Record(ctx context.Context, adID int64, counter entity.AdCounter) error {
	return c.repo.IncrementCounter(ctx, adID, counter, 1)
}

func (c *dbCounter) Flush(context.Context) (int, error) {
	return 0, nil
}

type redisCounter struct {
	repo adRepo.Repository
	rdb  *redis.Client
	log  *zap.SugaredLogger
}

func member(adID int64, counter entity.AdCounter) string {
	return fmt.Sprintf("%s:%d", counter, adID)
}

func counterKey(m string) string {
	return "ad:" + m
}

func parseMember(m string) (int64, entity.AdCounter, bool) {
	kind, id, ok := strings.Cut(m, ":")
	if !ok || !entity.AdCounter(kind).Valid() {
		return 0, "", false
	}
	adID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return adID, entity.AdCounter(kind), true
}

func (c *redisCounter) Record(ctx context.Context, adID int64, counter entity.AdCounter) error {
	m := member(adID, counter)

	if err := c.rdb.Incr(ctx, counterKey(m)).Err(); err != nil {
		return fmt.Errorf("failed to increment %s: %w", counter, err)
	}
	if err := c.rdb.SAdd(ctx, pendingCountersKey, m).Err(); err != nil {
		return fmt.Errorf("failed to add to pending: %w", err)
	}
	return nil
}

// Flush applies each buffered delta with one UPDATE and then subtracts the
// same amount in redis, so increments landing mid-flush stay buffered.
// Members stay in the pending set; a zero key is skipped cheaply.
func (c *redisCounter) Flush(ctx context.Context) (int, error) {
	members, err := c.rdb.SMembers(ctx, pendingCountersKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending ad counters: %w", err)
	}

	flushed := 0
	for _, m := range members {
		adID, counter, ok := parseMember(m)
		if !ok {
			c.log.Warnw("dropping malformed ad counter", "member", m)
			c.rdb.SRem(ctx, pendingCountersKey, m)
			continue
		}

		key := counterKey(m)
		n, err := c.rdb.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) {
			c.rdb.SRem(ctx, pendingCountersKey, m)
			continue
		}
		if err != nil {
			c.log.Warnw("failed to read ad counter", "ad_id", adID, "counter", counter, "error", err)
			continue
		}
		if n <= 0 {
			continue
		}

		if err := c.repo.IncrementCounter(ctx, adID, counter, n); err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				c.rdb.Del(ctx, key)
				c.rdb.SRem(ctx, pendingCountersKey, m)
				continue
			}
			c.log.Errorw("failed to flush ad counter", "ad_id", adID, "counter", counter, "error", err)
			continue
		}

		if err := c.rdb.DecrBy(ctx, key, n).Err(); err != nil {
			// The database already has n; the next flush would apply it twice.
			c.log.Errorw("failed to settle ad counter", "ad_id", adID, "counter", counter, "delta", n, "error", err)
			continue
		}
		flushed++
	}

	return flushed, nil
}
