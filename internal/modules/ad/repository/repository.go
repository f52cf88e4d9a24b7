package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Analytics aggregates counters across all ads.
type Analytics struct {
	TotalAds         int64       `json:"total_ads"`
	ActiveAds        int64       `json:"active_ads"`
	TotalImpressions int64       `json:"total_impressions"`
	TotalClicks      int64       `json:"total_clicks"`
	AverageCTR       float64     `json:"average_ctr"`
	TopPerforming    []entity.Ad `json:"top_performing_ads"`
}

type Repository interface {
	FindActive(ctx context.Context, position, adType string, today time.Time) ([]entity.Ad, error)
	FindByID(ctx context.Context, id int64) (*entity.Ad, error)
	FindAll(ctx context.Context) ([]entity.Ad, error)
	Create(ctx context.Context, ad *entity.Ad) error
	Update(ctx context.Context, ad *entity.Ad) error
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	IncrementCounter(ctx context.Context, id int64, counter entity.AdCounter, delta int64) error
	Analytics(ctx context.Context) (*Analytics, error)
	DeactivateExpired(ctx context.Context, today time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindActive returns ads serving position on the calendar day of today,
// newest first. Null date bounds are open.
func (r *repository) FindActive(ctx context.Context, position, adType string, today time.Time) ([]entity.Ad, error) {
	day := entity.DateOf(today).Format(dateLayout)

	q := r.db.WithContext(ctx).
		Where("active = ? AND position = ?", true, position).
		Where("(start_date IS NULL OR start_date <= ?)", day).
		Where("(end_date IS NULL OR end_date >= ?)", day)
	if adType != "" {
		q = q.Where("type = ?", adType)
	}

	var ads []entity.Ad
	if err := q.Order("created_at DESC").Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("failed to query active ads: %w", err)
	}
	return ads, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*entity.Ad, error) {
	var ad entity.Ad
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ad).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find ad: %w", err)
	}
	return &ad, nil
}

func (r *repository) FindAll(ctx context.Context) ([]entity.Ad, error) {
	var ads []entity.Ad
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ads).Error; err != nil {
		return nil, fmt.Errorf("failed to list ads: %w", err)
	}
	return ads, nil
}

func (r *repository) Create(ctx context.Context, ad *entity.Ad) error {
	if err := r.db.WithContext(ctx).Create(ad).Error; err != nil {
		return fmt.Errorf("failed to create ad: %w", err)
	}
	return nil
}

// Update saves the editable columns. Counters are owned by IncrementCounter
// and never written from a loaded copy.
func (r *repository) Update(ctx context.Context, ad *entity.Ad) error {
	res := r.db.WithContext(ctx).Model(ad).
		Select("title", "description", "image_url", "link_url", "position", "type", "start_date", "end_date", "active").
		Updates(ad)
	if res.Error != nil {
		return fmt.Errorf("failed to update ad: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&entity.Ad{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete ad: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Ad{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to toggle ad: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

// IncrementCounter adds delta to a counter column in a single UPDATE so
// concurrent callers never overwrite each other.
func (r *repository) IncrementCounter(ctx context.Context, id int64, counter entity.AdCounter, delta int64) error {
	if !counter.Valid() {
		return fmt.Errorf("unknown ad counter %q", counter)
	}

	col := string(counter)
	res := r.db.WithContext(ctx).Model(&entity.Ad{}).
		Where("id = ?", id).
		UpdateColumn(col, gorm.Expr(col+" + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s: %w", col, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (r *repository) Analytics(ctx context.Context) (*Analytics, error) {
	a := &Analytics{}

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total_ads,
			COUNT(CASE WHEN active = TRUE THEN 1 END) AS active_ads,
			COALESCE(SUM(impressions), 0) AS total_impressions,
			COALESCE(SUM(clicks), 0) AS total_clicks
		FROM ads`).
		Row().
		Scan(&a.TotalAds, &a.ActiveAds, &a.TotalImpressions, &a.TotalClicks)
	if err != nil {
		return nil, fmt.Errorf("failed to get ads statistics: %w", err)
	}

	if a.TotalImpressions > 0 {
		a.AverageCTR = float64(a.TotalClicks) / float64(a.TotalImpressions) * 100
	}

	if err := r.db.WithContext(ctx).
		Where("impressions > 0").
		Order("(clicks::float / impressions) DESC, impressions DESC").
		Limit(5).
		Find(&a.TopPerforming).Error; err != nil {
		return nil, fmt.Errorf("failed to get top performing ads: %w", err)
	}

	return a, nil
}

// DeactivateExpired switches off ads whose end date has passed.
func (r *repository) DeactivateExpired(ctx context.Context, today time.Time) (int64, error) {
	day := entity.DateOf(today).Format(dateLayout)
	res := r.db.WithContext(ctx).Model(&entity.Ad{}).
		Where("active = ? AND end_date IS NOT NULL AND end_date < ?", true, day).
		Update("active", false)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate expired ads: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Ad{}).Count(&count).Error
	return count, err
}
