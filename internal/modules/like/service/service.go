package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/wanderhub/internal/entity"
	likeDto "anoa.com/wanderhub/internal/modules/like/dto"
	likeRepo "anoa.com/wanderhub/internal/modules/like/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const countTTL = time.Hour

type LikeService interface {
	Toggle(ctx context.Context, userID uuid.UUID, target entity.Target) (*likeDto.LikeResponse, error)
	Count(ctx context.Context, target entity.Target) (int64, error)
	// Status returns the count and, for a signed in viewer, whether they
	// liked the target.
	Status(ctx context.Context, viewer *uuid.UUID, target entity.Target) (*likeDto.LikeResponse, error)
}

type likeService struct {
	repo        likeRepo.LikeRepository
	redisClient *redis.Client
	log         *zap.SugaredLogger
}

// NewLikeService caches counts in Redis when redisClient is not nil.
func NewLikeService(repo likeRepo.LikeRepository, redisClient *redis.Client, log *zap.SugaredLogger) LikeService {
	return &likeService{repo: repo, redisClient: redisClient, log: log}
}

func countKey(target entity.Target) string {
	col, id, _ := target.Column()
	return fmt.Sprintf("likes:%s:%s", col, id)
}

func validTarget(target entity.Target) error {
	if _, _, ok := target.Column(); !ok {
		return apperror.Wrap(apperror.ErrBadRequest, "a like needs exactly one target")
	}
	return nil
}

func (s *likeService) Toggle(ctx context.Context, userID uuid.UUID, target entity.Target) (*likeDto.LikeResponse, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}

	liked, err := s.repo.Toggle(ctx, userID, target)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Del(ctx, countKey(target)).Err(); err != nil {
			s.log.Warnw("failed to invalidate like count", "key", countKey(target), "error", err)
		}
	}

	count, err := s.Count(ctx, target)
	if err != nil {
		return nil, err
	}
	return &likeDto.LikeResponse{Liked: liked, Count: count}, nil
}

// Count reads through the Redis cache; a cache failure falls back to the
// database.
func (s *likeService) Count(ctx context.Context, target entity.Target) (int64, error) {
	if err := validTarget(target); err != nil {
		return 0, err
	}
	if s.redisClient == nil {
		return s.repo.Count(ctx, target)
	}

	key := countKey(target)
	cached, err := s.redisClient.Get(ctx, key).Int64()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.log.Warnw("failed to read like count cache", "key", key, "error", err)
	}

	count, err := s.repo.Count(ctx, target)
	if err != nil {
		return 0, err
	}
	if err := s.redisClient.Set(ctx, key, count, countTTL).Err(); err != nil {
		s.log.Warnw("failed to cache like count", "key", key, "error", err)
	}
	return count, nil
}

func (s *likeService) Status(ctx context.Context, viewer *uuid.UUID, target entity.Target) (*likeDto.LikeResponse, error) {
	count, err := s.Count(ctx, target)
	if err != nil {
		return nil, err
	}

	res := &likeDto.LikeResponse{Count: count}
	if viewer != nil {
		res.Liked, err = s.repo.Exists(ctx, *viewer, target)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
