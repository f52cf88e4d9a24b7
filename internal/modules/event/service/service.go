package service

import (
	"context"
	"time"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	eventRepo "anoa.com/wanderhub/internal/modules/event/repository"
	searchService "anoa.com/wanderhub/internal/modules/search/service"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Ads interface {
	PickForDetail(ctx context.Context, position string) *entity.Ad
	ToResponse(ad entity.Ad) adDto.AdResponse
}

type EventService interface {
	Create(ctx context.Context, userID uuid.UUID, input eventDto.CreateEventInput) (*eventDto.EventResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*eventDto.EventDetailResponse, error)
	List(ctx context.Context, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error)
	Markers(ctx context.Context) ([]eventDto.MarkerResponse, error)
	Delete(ctx context.Context, actor uuid.UUID, isStaff bool, id uuid.UUID) error
}

type eventService struct {
	repo    eventRepo.EventRepository
	indexer searchService.Indexer
	ads     Ads
	log     *zap.SugaredLogger
}

func NewEventService(repo eventRepo.EventRepository, indexer searchService.Indexer, ads Ads, log *zap.SugaredLogger) EventService {
	return &eventService{
		repo:    repo,
		indexer: indexer,
		ads:     ads,
		log:     log,
	}
}

func (s *eventService) Create(ctx context.Context, userID uuid.UUID, input eventDto.CreateEventInput) (*eventDto.EventResponse, error) {
	name := sanitize.Text(input.Name)
	location := sanitize.Text(input.Location)
	if name == "" || location == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "name and location are required")
	}
	if (input.Latitude == nil) != (input.Longitude == nil) {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "latitude and longitude must be set together")
	}

	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "start_date must be YYYY-MM-DD")
	}
	event := &entity.Event{
		UserID:    userID,
		Name:      name,
		EventType: input.EventType,
		StartDate: start,
		Location:  location,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
	}
	if input.EndDate != nil {
		end, err := time.Parse(dateLayout, *input.EndDate)
		if err != nil {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "end_date must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "end_date is before start_date")
		}
		event.EndDate = &end
	}
	if input.Description != nil {
		desc := sanitize.Text(*input.Description)
		event.Description = &desc
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	if err := s.indexer.IndexEvent(event); err != nil {
		s.log.Warnw("failed to index event", "event_id", event.ID, "error", err)
	}

	res := toEventResponse(event)
	return &res, nil
}

func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*eventDto.EventDetailResponse, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &eventDto.EventDetailResponse{EventResponse: toEventResponse(event)}
	if ad := s.ads.PickForDetail(ctx, entity.AdPositionEventDetail); ad != nil {
		adRes := s.ads.ToResponse(*ad)
		res.Ad = &adRes
	}
	return res, nil
}

func (s *eventService) List(ctx context.Context, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}
	events, err := s.repo.List(ctx, query.EventType, limit)
	if err != nil {
		return nil, err
	}

	out := make([]eventDto.EventResponse, 0, len(events))
	for i := range events {
		out = append(out, toEventResponse(&events[i]))
	}
	return out, nil
}

func (s *eventService) Markers(ctx context.Context) ([]eventDto.MarkerResponse, error) {
	events, err := s.repo.Markers(ctx)
	if err != nil {
		return nil, err
	}

	markers := make([]eventDto.MarkerResponse, 0, len(events))
	for _, e := range events {
		if e.Latitude == nil || e.Longitude == nil {
			continue
		}
		markers = append(markers, eventDto.MarkerResponse{
			ID:        e.ID,
			Name:      e.Name,
			EventType: e.EventType,
			Latitude:  *e.Latitude,
			Longitude: *e.Longitude,
		})
	}
	return markers, nil
}

func (s *eventService) Delete(ctx context.Context, actor uuid.UUID, isStaff bool, id uuid.UUID) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if event.UserID != actor && !isStaff {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own events")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.indexer.DeleteEvent(id.String()); err != nil {
		s.log.Warnw("failed to remove event from index", "event_id", id, "error", err)
	}
	return nil
}

func toEventResponse(e *entity.Event) eventDto.EventResponse {
	res := eventDto.EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		EventType:   e.EventType,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Location:    e.Location,
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		SourceURL:   e.SourceURL,
		Author:      commonDto.AuthorResponse{ID: e.UserID},
		CreatedAt:   e.CreatedAt,
	}
	if e.User != nil {
		res.Author.Username = e.User.Username
		res.Author.AvatarURL = e.User.AvatarURL
	}
	return res
}
