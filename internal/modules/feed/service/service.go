package service

import (
	"context"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	adService "anoa.com/wanderhub/internal/modules/ad/service"
	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	feedDto "anoa.com/wanderhub/internal/modules/feed/dto"
	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	"go.uber.org/zap"
)

type Places interface {
	List(ctx context.Context, query placeDto.ListPlacesQuery) (*placeDto.PlaceListResponse, error)
}

type Events interface {
	List(ctx context.Context, query eventDto.ListEventsQuery) ([]eventDto.EventResponse, error)
}

type Ads interface {
	FeedAds(ctx context.Context) []entity.Ad
	ToResponse(ad entity.Ad) adDto.AdResponse
}

type FeedService interface {
	// Home lists places with home feed ads woven in every fourth item,
	// plus upcoming events.
	Home(ctx context.Context, query feedDto.HomeQuery) (*feedDto.HomeResponse, error)
}

type feedService struct {
	places Places
	events Events
	ads    Ads
	log    *zap.SugaredLogger
}

func NewFeedService(places Places, events Events, ads Ads, log *zap.SugaredLogger) FeedService {
	return &feedService{places: places, events: events, ads: ads, log: log}
}

func (s *feedService) Home(ctx context.Context, query feedDto.HomeQuery) (*feedDto.HomeResponse, error) {
	places, err := s.places.List(ctx, query.ListPlacesQuery)
	if err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, eventDto.ListEventsQuery{EventType: query.EventType, Limit: 10})
	if err != nil {
		// Events are a side rail; the feed still renders without them.
		s.log.Warnw("failed to load feed events", "error", err)
		events = []eventDto.EventResponse{}
	}

	ads := make([]adDto.AdResponse, 0)
	for _, ad := range s.ads.FeedAds(ctx) {
		ads = append(ads, s.ads.ToResponse(ad))
	}

	woven := adService.Interleave(places.Data, ads, adService.FeedEvery)
	items := make([]feedDto.FeedItem, 0, len(woven))
	for _, it := range woven {
		if it.IsAd() {
			items = append(items, feedDto.FeedItem{Kind: feedDto.KindAd, Ad: it.Ad})
			continue
		}
		card := it.Item
		items = append(items, feedDto.FeedItem{Kind: feedDto.KindPlace, Place: &card})
	}

	return &feedDto.HomeResponse{
		Items:  items,
		Events: events,
		Meta:   places.Meta,
	}, nil
}
