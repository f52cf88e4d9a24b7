package repository

import (
	"context"
	"errors"

	"anoa.com/wanderhub/internal/entity"
	"anoa.com/wanderhub/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	// InsertMissing skips events whose source_url is already stored and
	// returns how many rows were written.
	InsertMissing(ctx context.Context, events []entity.Event) (int64, error)
	KnownSourceURLs(ctx context.Context, urls []string) (map[string]bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	List(ctx context.Context, eventType string, limit int) ([]entity.Event, error)
	Markers(ctx context.Context) ([]entity.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepository) InsertMissing(ctx context.Context, events []entity.Event) (int64, error) {
	if len(events) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "source_url"}}, DoNothing: true}).
		Create(&events)
	return res.RowsAffected, res.Error
}

func (r *eventRepository) KnownSourceURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	known := make(map[string]bool)
	if len(urls) == 0 {
		return known, nil
	}

	var found []string
	err := r.db.WithContext(ctx).Model(&entity.Event{}).
		Where("source_url IN ?", urls).
		Pluck("source_url", &found).Error
	if err != nil {
		return nil, err
	}
	for _, u := range found {
		known[u] = true
	}
	return known, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	var event entity.Event
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Where("id = ?", id).
		First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "event not found")
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context, eventType string, limit int) ([]entity.Event, error) {
	query := r.db.WithContext(ctx)
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	var events []entity.Event
	err := query.Order("start_date ASC").Limit(limit).Find(&events).Error
	return events, err
}

func (r *eventRepository) Markers(ctx context.Context) ([]entity.Event, error) {
	var events []entity.Event
	err := r.db.WithContext(ctx).
		Select("id", "name", "event_type", "latitude", "longitude").
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Find(&events).Error
	return events, err
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Wrap(apperror.ErrNotFound, "event not found")
	}
	return nil
}

func (r *eventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Event{}).Count(&count).Error
	return count, err
}
