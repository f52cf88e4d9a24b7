package service

import (
	"context"
	"math"

	"anoa.com/wanderhub/internal/entity"
	ratingDto "anoa.com/wanderhub/internal/modules/rating/dto"
	ratingRepo "anoa.com/wanderhub/internal/modules/rating/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RatingService interface {
	Rate(ctx context.Context, userID uuid.UUID, target entity.Target, input ratingDto.RateInput) (*ratingDto.SummaryResponse, error)
	Summary(ctx context.Context, viewer *uuid.UUID, target entity.Target) (*ratingDto.SummaryResponse, error)
	Remove(ctx context.Context, userID uuid.UUID, target entity.Target) error
}

type ratingService struct {
	repo ratingRepo.RatingRepository
	log  *zap.SugaredLogger
}

func NewRatingService(repo ratingRepo.RatingRepository, log *zap.SugaredLogger) RatingService {
	return &ratingService{repo: repo, log: log}
}

// Only places and events can be rated.
func validTarget(target entity.Target) error {
	col, _, ok := target.Column()
	if !ok || col == "comment_id" {
		return apperror.Wrap(apperror.ErrBadRequest, "a rating needs exactly one place or event")
	}
	return nil
}

func (s *ratingService) Rate(ctx context.Context, userID uuid.UUID, target entity.Target, input ratingDto.RateInput) (*ratingDto.SummaryResponse, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "rating must be between 1 and 5")
	}

	var emoji *string
	if input.EmojiReaction != nil {
		if e := sanitize.Text(*input.EmojiReaction); e != "" {
			emoji = &e
		}
	}

	rating := &entity.Rating{
		UserID:        userID,
		PlaceID:       target.PlaceID,
		EventID:       target.EventID,
		Rating:        input.Rating,
		EmojiReaction: emoji,
	}
	if err := s.repo.Upsert(ctx, rating); err != nil {
		s.log.Errorw("failed to save rating", "user_id", userID, "error", err)
		return nil, err
	}

	return s.Summary(ctx, &userID, target)
}

func (s *ratingService) Summary(ctx context.Context, viewer *uuid.UUID, target entity.Target) (*ratingDto.SummaryResponse, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}

	sum, err := s.repo.Summary(ctx, target)
	if err != nil {
		return nil, err
	}

	res := &ratingDto.SummaryResponse{
		Average: math.Round(sum.Average*10) / 10,
		Count:   sum.Count,
	}

	if viewer != nil {
		mine, err := s.repo.FindByUser(ctx, *viewer, target)
		if err != nil {
			return nil, err
		}
		if mine != nil {
			res.Mine = &ratingDto.RatingResponse{
				Rating:        mine.Rating,
				EmojiReaction: mine.EmojiReaction,
				UpdatedAt:     mine.UpdatedAt,
			}
		}
	}
	return res, nil
}

func (s *ratingService) Remove(ctx context.Context, userID uuid.UUID, target entity.Target) error {
	if err := validTarget(target); err != nil {
		return err
	}

	n, err := s.repo.Delete(ctx, userID, target)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Wrap(apperror.ErrNotFound, "rating not found")
	}
	return nil
}
