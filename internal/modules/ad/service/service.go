package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	adRepo "anoa.com/wanderhub/internal/modules/ad/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/broker"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/hashid"
	"anoa.com/wanderhub/pkg/sanitize"
	"anoa.com/wanderhub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type AdService interface {
	// SelectActiveAds never fails; lookup errors are logged and yield no ads.
	SelectActiveAds(ctx context.Context, position, adType string) []entity.Ad
	PickForDetail(ctx context.Context, position string) *entity.Ad
	FeedAds(ctx context.Context) []entity.Ad
	RecordImpression(ctx context.Context, id int64) error
	RecordClick(ctx context.Context, id int64) (string, error)
	FlushCounters(ctx context.Context) (int, error)
	DeactivateExpired(ctx context.Context) (int64, error)

	List(ctx context.Context) ([]adDto.AdResponse, error)
	Get(ctx context.Context, id int64) (*adDto.AdResponse, error)
	Create(ctx context.Context, actor uuid.UUID, input adDto.AdInput, image *commonDto.UploadFile) (*adDto.AdResponse, error)
	Update(ctx context.Context, id int64, input adDto.AdInput, image *commonDto.UploadFile) (*adDto.AdResponse, error)
	Delete(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	Analytics(ctx context.Context) (*adDto.AnalyticsResponse, error)

	ToResponse(ad entity.Ad) adDto.AdResponse
}

type Option func(*adService)

// WithClock replaces time.Now for date window checks.
func WithClock(now func() time.Time) Option {
	return func(s *adService) { s.now = now }
}

// WithRand replaces the uniform pick used on detail pages.
func WithRand(intN func(n int) int) Option {
	return func(s *adService) { s.intN = intN }
}

type adService struct {
	repo      adRepo.Repository
	counter   Counter
	storage   storage.MediaStorage
	codec     *hashid.Codec
	publisher broker.Publisher
	log       *zap.SugaredLogger
	now       func() time.Time
	intN      func(n int) int
}

func NewAdService(
	repo adRepo.Repository,
	counter Counter,
	storage storage.MediaStorage,
	codec *hashid.Codec,
	publisher broker.Publisher,
	log *zap.SugaredLogger,
	opts ...Option,
) AdService {
	s := &adService{
		repo:      repo,
		counter:   counter,
		storage:   storage,
		codec:     codec,
		publisher: publisher,
		log:       log,
		now:       time.Now,
		intN:      rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *adService) SelectActiveAds(ctx context.Context, position, adType string) []entity.Ad {
	ads, err := s.repo.FindActive(ctx, position, adType, s.now())
	if err != nil {
		s.log.Warnw("ad lookup failed, serving none", "position", position, "type", adType, "error", err)
		return []entity.Ad{}
	}
	return ads
}

// PickForDetail chooses one banner uniformly and counts one impression
// for it. Sponsored cards belong to the home feed only.
func (s *adService) PickForDetail(ctx context.Context, position string) *entity.Ad {
	ads := s.SelectActiveAds(ctx, position, entity.AdTypeBanner)
	if len(ads) == 0 {
		return nil
	}

	ad := ads[s.intN(len(ads))]
	if err := s.counter.Record(ctx, ad.ID, entity.AdCounterImpressions); err != nil {
		s.log.Warnw("failed to record impression", "ad_id", ad.ID, "error", err)
	}
	return &ad
}

// FeedAds returns the home feed ads and counts an impression for each,
// whether or not the client ends up showing it.
func (s *adService) FeedAds(ctx context.Context) []entity.Ad {
	ads := s.SelectActiveAds(ctx, entity.AdPositionHomeFeed, entity.AdTypeSponsoredCard)
	for _, ad := range ads {
		if err := s.counter.Record(ctx, ad.ID, entity.AdCounterImpressions); err != nil {
			s.log.Warnw("failed to record impression", "ad_id", ad.ID, "error", err)
		}
	}
	return ads
}

func (s *adService) RecordImpression(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.counter.Record(ctx, id, entity.AdCounterImpressions)
}

// RecordClick counts the click and returns where to send the user.
func (s *adService) RecordClick(ctx context.Context, id int64) (string, error) {
	ad, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.counter.Record(ctx, id, entity.AdCounterClicks); err != nil {
		return "", err
	}

	if err := s.publisher.Publish(ctx, "ad.clicked", fmt.Sprint(id), map[string]any{
		"ad_id":    id,
		"position": ad.Position,
	}); err != nil {
		s.log.Warnw("failed to publish ad click", "ad_id", id, "error", err)
	}

	return ad.LinkURL, nil
}

func (s *adService) FlushCounters(ctx context.Context) (int, error) {
	return s.counter.Flush(ctx)
}

func (s *adService) DeactivateExpired(ctx context.Context) (int64, error) {
	return s.repo.DeactivateExpired(ctx, s.now())
}

func (s *adService) List(ctx context.Context) ([]adDto.AdResponse, error) {
	ads, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ads), nil
}

func (s *adService) Get(ctx context.Context, id int64) (*adDto.AdResponse, error) {
	ad, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.ToResponse(*ad)
	return &res, nil
}

func (s *adService) Create(ctx context.Context, actor uuid.UUID, input adDto.AdInput, image *commonDto.UploadFile) (*adDto.AdResponse, error) {
	ad := &entity.Ad{CreatedBy: &actor, Active: true}
	if err := applyInput(ad, input); err != nil {
		return nil, err
	}

	uploaded, err := s.uploadImage(ctx, ad, image)
	if err != nil {
		return nil, err
	}
	if ad.ImageURL == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "image or image_url is required")
	}

	if err := s.repo.Create(ctx, ad); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	res := s.ToResponse(*ad)
	return &res, nil
}

func (s *adService) Update(ctx context.Context, id int64, input adDto.AdInput, image *commonDto.UploadFile) (*adDto.AdResponse, error) {
	ad, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousImage := ad.ImageURL

	if err := applyInput(ad, input); err != nil {
		return nil, err
	}

	uploaded, err := s.uploadImage(ctx, ad, image)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, ad); err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if uploaded != "" && previousImage != uploaded {
		s.discard(ctx, previousImage)
	}

	res := s.ToResponse(*ad)
	return &res, nil
}

func (s *adService) Delete(ctx context.Context, id int64) error {
	ad, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, ad.ImageURL)
	return nil
}

func (s *adService) SetActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *adService) Analytics(ctx context.Context) (*adDto.AnalyticsResponse, error) {
	a, err := s.repo.Analytics(ctx)
	if err != nil {
		return nil, err
	}
	return &adDto.AnalyticsResponse{
		TotalAds:         a.TotalAds,
		ActiveAds:        a.ActiveAds,
		TotalImpressions: a.TotalImpressions,
		TotalClicks:      a.TotalClicks,
		AverageCTR:       a.AverageCTR,
		TopPerforming:    s.toResponses(a.TopPerforming),
	}, nil
}

func (s *adService) uploadImage(ctx context.Context, ad *entity.Ad, image *commonDto.UploadFile) (string, error) {
	if image == nil {
		return "", nil
	}
	if s.storage == nil {
		return "", apperror.Wrap(apperror.ErrBadRequest, "image uploads are not configured")
	}

	name := fmt.Sprintf("ad-%d%s", time.Now().UnixNano(), filepath.Ext(image.FileName))
	url, err := s.storage.Upload(ctx, image.Reader, "ads", name)
	if err != nil {
		return "", fmt.Errorf("failed to upload ad image: %w", err)
	}
	ad.ImageURL = url
	return url, nil
}

func (s *adService) discard(ctx context.Context, url string) {
	if url == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		s.log.Warnw("failed to delete ad image", "url", url, "error", err)
	}
}

func applyInput(ad *entity.Ad, input adDto.AdInput) error {
	ad.Title = sanitize.Text(input.Title)
	if ad.Title == "" {
		return apperror.Wrap(apperror.ErrInvalidInput, "title is required")
	}
	if input.Description != nil {
		d := sanitize.Text(*input.Description)
		ad.Description = &d
	}
	if input.ImageURL != "" {
		ad.ImageURL = input.ImageURL
	}
	ad.LinkURL = input.LinkURL
	ad.Position = input.Position
	ad.Type = input.Type
	if ad.Type == "" {
		ad.Type = entity.AdTypeSponsoredCard
	}
	if input.Active != nil {
		ad.Active = *input.Active
	}

	var err error
	if ad.StartDate, err = parseDate(input.StartDate); err != nil {
		return err
	}
	if ad.EndDate, err = parseDate(input.EndDate); err != nil {
		return err
	}
	if ad.StartDate != nil && ad.EndDate != nil && ad.EndDate.Before(*ad.StartDate) {
		return apperror.Wrap(apperror.ErrInvalidInput, "end_date must not be before start_date")
	}
	return nil
}

func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "dates must be YYYY-MM-DD")
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func (s *adService) ToResponse(ad entity.Ad) adDto.AdResponse {
	hid, err := s.codec.Encode(ad.ID)
	if err != nil {
		s.log.Errorw("failed to encode ad id", "ad_id", ad.ID, "error", err)
	}

	var ctr float64
	if ad.Impressions > 0 {
		ctr = float64(ad.Clicks) / float64(ad.Impressions) * 100
	}

	return adDto.AdResponse{
		ID:          hid,
		Title:       ad.Title,
		Description: ad.Description,
		ImageURL:    ad.ImageURL,
		LinkURL:     ad.LinkURL,
		Position:    ad.Position,
		Type:        ad.Type,
		StartDate:   formatDate(ad.StartDate),
		EndDate:     formatDate(ad.EndDate),
		Active:      ad.Active,
		Clicks:      ad.Clicks,
		Impressions: ad.Impressions,
		CTR:         ctr,
		CreatedAt:   ad.CreatedAt,
	}
}

func (s *adService) toResponses(ads []entity.Ad) []adDto.AdResponse {
	out := make([]adDto.AdResponse, 0, len(ads))
	for _, ad := range ads {
		out = append(out, s.ToResponse(ad))
	}
	return out
}
