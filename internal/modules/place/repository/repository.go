package repository

import (
	"context"
	"errors"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListFilter struct {
	Category string
	Region   string
	Limit    int
	Offset   int
}

type PlaceRepository interface {
	// Create stores the place and its media rows in one transaction.
	Create(ctx context.Context, place *entity.Place, media []entity.PlaceMedia) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Place, error)
	List(ctx context.Context, filter ListFilter) ([]entity.Place, int64, error)
	Markers(ctx context.Context) ([]entity.Place, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type placeRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) PlaceRepository {
	return &placeRepository{db: db}
}

func (r *placeRepository) Create(ctx context.Context, place *entity.Place, media []entity.PlaceMedia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Media").Create(place).Error; err != nil {
			return err
		}
		if len(media) == 0 {
			return nil
		}
		for i := range media {
			media[i].PlaceID = place.ID
		}
		if err := tx.Create(&media).Error; err != nil {
			return err
		}
		place.Media = media
		return nil
	})
}

func orderedMedia(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, id ASC")
}

func (r *placeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Place, error) {
	var place entity.Place
	err := r.db.WithContext(ctx).
		Preload("Media", orderedMedia).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Where("id = ?", id).
		First(&place).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "place not found")
	}
	if err != nil {
		return nil, err
	}
	return &place, nil
}

func (r *placeRepository) List(ctx context.Context, filter ListFilter) ([]entity.Place, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Place{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Region != "" {
		query = query.Where("region = ?", filter.Region)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var places []entity.Place
	err := query.
		Preload("Media", orderedMedia).
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&places).Error
	return places, total, err
}

func (r *placeRepository) Markers(ctx context.Context) ([]entity.Place, error) {
	var places []entity.Place
	err := r.db.WithContext(ctx).
		Select("id", "name", "category", "latitude", "longitude").
		Find(&places).Error
	return places, err
}

func (r *placeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("place_id = ?", id).Delete(&entity.PlaceMedia{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Place{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Wrap(apperror.ErrNotFound, "place not found")
		}
		return nil
	})
}

func (r *placeRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Place{}).Count(&count).Error
	return count, err
}
