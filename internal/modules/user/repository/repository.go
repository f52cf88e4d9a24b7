package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	Upsert(ctx context.Context, user *entity.User) error
	Search(ctx context.Context, query string, exclude []uuid.UUID, limit int) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []entity.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Upsert creates the profile row for a provider identity or updates the
// editable columns. Role is never touched.
func (r *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "bio", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Wrap(apperror.ErrConflict, "username already taken")
		}
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, query string, exclude []uuid.UUID, limit int) ([]entity.User, error) {
	q := r.db.WithContext(ctx).Where("username ILIKE ?", "%"+query+"%")
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}

	var users []entity.User
	if err := q.Order("username ASC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
