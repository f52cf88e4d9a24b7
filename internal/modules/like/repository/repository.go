package repository

import (
	"context"
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LikeRepository interface {
	// Toggle removes the user's like on the target or adds one. It reports
	// whether the target is liked afterwards.
	Toggle(ctx context.Context, userID uuid.UUID, target entity.Target) (bool, error)
	Count(ctx context.Context, target entity.Target) (int64, error)
	Exists(ctx context.Context, userID uuid.UUID, target entity.Target) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID uuid.UUID, target entity.Target) (bool, error) {
	col, id, _ := target.Column()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND "+col+" = ?", userID, id).
		Delete(&entity.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	like := &entity.Like{
		UserID:    userID,
		PlaceID:   target.PlaceID,
		EventID:   target.EventID,
		CommentID: target.CommentID,
	}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		// A concurrent toggle from the same user already inserted it.
		if database.IsUniqueViolation(err) {
			return true, nil
		}
		return false, fmt.Errorf("create like: %w", err)
	}
	return true, nil
}

func (r *likeRepository) Count(ctx context.Context, target entity.Target) (int64, error) {
	col, id, _ := target.Column()

	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where(col+" = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID uuid.UUID, target entity.Target) (bool, error) {
	col, id, _ := target.Column()

	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Like{}).
		Where("user_id = ? AND "+col+" = ?", userID, id).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("find like: %w", err)
	}
	return count > 0, nil
}
