package repository

import (
	"context"
	"errors"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	// ListByTarget returns comments newest first with their authors.
	ListByTarget(ctx context.Context, target entity.Target, limit, offset int) ([]entity.Comment, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "comment not found")
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTarget(ctx context.Context, target entity.Target, limit, offset int) ([]entity.Comment, int64, error) {
	col, id, _ := target.Column()
	query := r.db.WithContext(ctx).Model(&entity.Comment{}).Where(col+" = ?", id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []entity.Comment
	err := query.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&entity.Like{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Wrap(apperror.ErrNotFound, "comment not found")
		}
		return nil
	})
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Comment{}).Count(&count).Error
	return count, err
}
