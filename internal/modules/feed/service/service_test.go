package service

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	feedDto "anoa.com/wanderhub/internal/modules/feed/dto"
	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlaces struct{ n int }

func (f fakePlaces) List(_ context.Context, q placeDto.ListPlacesQuery) (*placeDto.PlaceListResponse, error) {
	cards := make([]placeDto.PlaceCard, f.n)
	for i := range cards {
		cards[i] = placeDto.PlaceCard{ID: uuid.New(), Name: "place-" + strconv.Itoa(i)}
	}
	return &placeDto.PlaceListResponse{Data: cards, Meta: commonDto.NewPaginationMeta(q.Pagination, int64(f.n))}, nil
}

type fakeEvents struct{ err error }

func (f fakeEvents) List(context.Context, eventDto.ListEventsQuery) ([]eventDto.EventResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []eventDto.EventResponse{{Name: "Jazz night"}}, nil
}

type fakeAds struct {
	ads   []entity.Ad
	calls int
}

func (f *fakeAds) FeedAds(context.Context) []entity.Ad {
	f.calls++
	return f.ads
}

func (f *fakeAds) ToResponse(ad entity.Ad) adDto.AdResponse {
	return adDto.AdResponse{ID: strconv.FormatInt(ad.ID, 10), Title: ad.Title}
}

func kinds(items []feedDto.FeedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		if it.Kind == feedDto.KindAd {
			out[i] = "ad:" + it.Ad.ID
		} else {
			out[i] = it.Place.Name
		}
	}
	return out
}

func TestHome_InterleavesAdsEveryFourth(t *testing.T) {
	ads := &fakeAds{ads: []entity.Ad{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}}
	svc := NewFeedService(fakePlaces{n: 10}, fakeEvents{}, ads, logger.Nop())

	res, err := svc.Home(context.Background(), feedDto.HomeQuery{
		ListPlacesQuery: placeDto.ListPlacesQuery{Pagination: commonDto.Pagination{Page: 1, Limit: 20}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"place-0", "place-1", "place-2", "place-3", "place-4", "ad:2",
		"place-5", "place-6", "place-7", "place-8", "ad:1",
		"place-9",
	}, kinds(res.Items))
	assert.Equal(t, 1, ads.calls)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, int64(10), res.Meta.TotalItems)
}

func TestHome_NoAdsLeavesPlaces(t *testing.T) {
	svc := NewFeedService(fakePlaces{n: 6}, fakeEvents{}, &fakeAds{}, logger.Nop())

	res, err := svc.Home(context.Background(), feedDto.HomeQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 6)
	for _, it := range res.Items {
		assert.Equal(t, feedDto.KindPlace, it.Kind)
	}
}

func TestHome_EventFailureDegrades(t *testing.T) {
	svc := NewFeedService(fakePlaces{n: 1}, fakeEvents{err: errors.New("db down")}, &fakeAds{}, logger.Nop())

	res, err := svc.Home(context.Background(), feedDto.HomeQuery{})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
	assert.Len(t, res.Items, 1)
}
