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
)

// pairPredicate matches the edge between a and b in either direction and
// nothing else.
const pairPredicate = "(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)"

type FriendRepository interface {
	Create(ctx context.Context, edge *entity.FriendEdge) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.FriendEdge, error)
	FindBetween(ctx context.Context, a, b uuid.UUID) (*entity.FriendEdge, error)
	Accept(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBetween(ctx context.Context, a, b uuid.UUID) (int64, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error)
	ListTouching(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type friendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func withProfiles(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "avatar_url") }).
		Preload("Friend", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "avatar_url") })
}

// Create inserts a pending edge. The pair index turns a concurrent
// duplicate into ErrConflict.
func (r *friendRepository) Create(ctx context.Context, edge *entity.FriendEdge) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return apperror.Wrap(apperror.ErrConflict, "a friend request already exists between these users")
		}
		return fmt.Errorf("create friend request: %w", err)
	}
	return nil
}

func (r *friendRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.FriendEdge, error) {
	var edge entity.FriendEdge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	return &edge, nil
}

func (r *friendRepository) FindBetween(ctx context.Context, a, b uuid.UUID) (*entity.FriendEdge, error) {
	var edge entity.FriendEdge
	if err := r.db.WithContext(ctx).Where(pairPredicate, a, b, b, a).First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find friend edge: %w", err)
	}
	return &edge, nil
}

// Accept flips a pending edge. It fails with ErrConflict when the edge is no
// longer pending.
func (r *friendRepository) Accept(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&entity.FriendEdge{}).
		Where("id = ? AND status = ?", id, entity.FriendStatusPending).
		Update("status", entity.FriendStatusAccepted)
	if res.Error != nil {
		return fmt.Errorf("accept friend request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.Wrap(apperror.ErrConflict, "friend request is no longer pending")
	}
	return nil
}

func (r *friendRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.FriendEdge{})
	if res.Error != nil {
		return fmt.Errorf("delete friend request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *friendRepository) DeleteBetween(ctx context.Context, a, b uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where(pairPredicate, a, b, b, a).Delete(&entity.FriendEdge{})
	if res.Error != nil {
		return 0, fmt.Errorf("remove friend: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *friendRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error) {
	var edges []entity.FriendEdge
	err := withProfiles(r.db.WithContext(ctx)).
		Where("(user_id = ? OR friend_id = ?) AND status = ?", userID, userID, entity.FriendStatusAccepted).
		Order("updated_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return edges, nil
}

func (r *friendRepository) ListIncoming(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error) {
	var edges []entity.FriendEdge
	err := withProfiles(r.db.WithContext(ctx)).
		Where("friend_id = ? AND status = ?", userID, entity.FriendStatusPending).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	return edges, nil
}

func (r *friendRepository) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error) {
	var edges []entity.FriendEdge
	err := withProfiles(r.db.WithContext(ctx)).
		Where("user_id = ? AND status = ?", userID, entity.FriendStatusPending).
		Order("created_at DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list outgoing requests: %w", err)
	}
	return edges, nil
}

func (r *friendRepository) ListTouching(ctx context.Context, userID uuid.UUID) ([]entity.FriendEdge, error) {
	var edges []entity.FriendEdge
	if err := r.db.WithContext(ctx).Where("user_id = ? OR friend_id = ?", userID, userID).Find(&edges).Error; err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return edges, nil
}

func (r *friendRepository) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.FriendEdge{}).
		Where("("+pairPredicate+") AND status = ?", a, b, b, a, entity.FriendStatusAccepted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check friendship: %w", err)
	}
	return count > 0, nil
}
