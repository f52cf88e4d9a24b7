package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Summary struct {
	Average float64
	Count   int64
}

type RatingRepository interface {
	// Upsert keeps one rating per user and target, conflicting on
	// (user_id, place_id) or (user_id, event_id).
	Upsert(ctx context.Context, rating *entity.Rating) error
	Summary(ctx context.Context, target entity.Target) (*Summary, error)
	FindByUser(ctx context.Context, userID uuid.UUID, target entity.Target) (*entity.Rating, error)
	Delete(ctx context.Context, userID uuid.UUID, target entity.Target) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *entity.Rating) error {
	col, _, _ := entity.Target{PlaceID: rating.PlaceID, EventID: rating.EventID}.Column()

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "user_id"}, {Name: col}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: col + " IS NOT NULL"}}},
			DoUpdates:   clause.AssignmentColumns([]string{"rating", "emoji_reaction", "updated_at"}),
		}).
		Create(rating).Error
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

func (r *ratingRepository) Summary(ctx context.Context, target entity.Target) (*Summary, error) {
	col, id, _ := target.Column()

	var s Summary
	err := r.db.WithContext(ctx).Model(&entity.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where(col+" = ?", id).
		Scan(&s).Error
	if err != nil {
		return nil, fmt.Errorf("summarize ratings: %w", err)
	}
	return &s, nil
}

func (r *ratingRepository) FindByUser(ctx context.Context, userID uuid.UUID, target entity.Target) (*entity.Rating, error) {
	col, id, _ := target.Column()

	var rating entity.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, id).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rating: %w", err)
	}
	return &rating, nil
}

func (r *ratingRepository) Delete(ctx context.Context, userID uuid.UUID, target entity.Target) (int64, error) {
	col, id, _ := target.Column()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, id).
		Delete(&entity.Rating{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete rating: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Rating{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count ratings: %w", err)
	}
	return count, nil
}
