package service

import (
	"context"
	"fmt"

	statDto "anoa.com/wanderhub/internal/modules/stat/dto"
)

// Counter is satisfied by every repository that can count its rows.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type Counters struct {
	Users    Counter
	Places   Counter
	Events   Counter
	Ads      Counter
	Comments Counter
	Ratings  Counter
}

type StatService interface {
	GetStats(ctx context.Context) (*statDto.StatsResponse, error)
	GetTotalUsers(ctx context.Context) (int64, error)
}

type statService struct {
	counters Counters
}

func NewStatService(counters Counters) StatService {
	return &statService{counters: counters}
}

func (s *statService) GetTotalUsers(ctx context.Context) (int64, error) {
	return s.counters.Users.Count(ctx)
}

func (s *statService) GetStats(ctx context.Context) (*statDto.StatsResponse, error) {
	var res statDto.StatsResponse

	for _, c := range []struct {
		name    string
		counter Counter
		dst     *int64
	}{
		{"users", s.counters.Users, &res.TotalUsers},
		{"places", s.counters.Places, &res.TotalPlaces},
		{"events", s.counters.Events, &res.TotalEvents},
		{"ads", s.counters.Ads, &res.TotalAds},
		{"comments", s.counters.Comments, &res.TotalComments},
		{"ratings", s.counters.Ratings, &res.TotalRatings},
	} {
		n, err := c.counter.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.name, err)
		}
		*c.dst = n
	}

	return &res, nil
}
