package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	placeRepo "anoa.com/wanderhub/internal/modules/place/repository"
	searchService "anoa.com/wanderhub/internal/modules/search/service"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/sanitize"
	"anoa.com/wanderhub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ads is the slice of the ad service detail pages need.
type Ads interface {
	PickForDetail(ctx context.Context, position string) *entity.Ad
	ToResponse(ad entity.Ad) adDto.AdResponse
}

type PlaceService interface {
	Create(ctx context.Context, userID uuid.UUID, input placeDto.CreatePlaceInput, files []*commonDto.UploadFile) (*placeDto.PlaceResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*placeDto.PlaceDetailResponse, error)
	List(ctx context.Context, query placeDto.ListPlacesQuery) (*placeDto.PlaceListResponse, error)
	Markers(ctx context.Context) ([]placeDto.MarkerResponse, error)
	Delete(ctx context.Context, actor uuid.UUID, isStaff bool, id uuid.UUID) error
}

type placeService struct {
	repo    placeRepo.PlaceRepository
	storage storage.MediaStorage
	indexer searchService.Indexer
	ads     Ads
	log     *zap.SugaredLogger
}

func NewPlaceService(repo placeRepo.PlaceRepository, storage storage.MediaStorage, indexer searchService.Indexer, ads Ads, log *zap.SugaredLogger) PlaceService {
	return &placeService{
		repo:    repo,
		storage: storage,
		indexer: indexer,
		ads:     ads,
		log:     log,
	}
}

// Create uploads every file before touching the database. Any failure after
// the first upload removes what was already stored.
func (s *placeService) Create(ctx context.Context, userID uuid.UUID, input placeDto.CreatePlaceInput, files []*commonDto.UploadFile) (*placeDto.PlaceResponse, error) {
	if len(files) > placeDto.MaxMediaFiles {
		return nil, apperror.Wrap(apperror.ErrBadRequest, fmt.Sprintf("at most %d media files are allowed", placeDto.MaxMediaFiles))
	}
	if len(files) > 0 && s.storage == nil {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "media uploads are not available")
	}

	name := sanitize.Text(input.Name)
	if name == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "name is required")
	}
	if input.Latitude == nil || input.Longitude == nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "latitude and longitude are required")
	}
	if lat, lng := *input.Latitude, *input.Longitude; lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "coordinates are out of range")
	}

	placeID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	place := &entity.Place{
		ID:        placeID,
		UserID:    userID,
		Name:      name,
		Category:  input.Category,
		Region:    sanitize.Text(input.Region),
		Latitude:  *input.Latitude,
		Longitude: *input.Longitude,
	}
	if input.Description != nil {
		desc := sanitize.Text(*input.Description)
		place.Description = &desc
	}

	media := make([]entity.PlaceMedia, 0, len(files))
	uploaded := make([]string, 0, len(files))
	for i, f := range files {
		fileName := fmt.Sprintf("%d%s", i, filepath.Ext(f.FileName))
		url, err := s.storage.Upload(ctx, f.Reader, "places/"+placeID.String(), fileName)
		if err != nil {
			s.cleanup(ctx, uploaded)
			return nil, fmt.Errorf("upload media %d: %w", i+1, err)
		}
		uploaded = append(uploaded, url)
		media = append(media, entity.PlaceMedia{
			MediaURL:     url,
			MediaType:    mediaType(f.ContentType),
			DisplayOrder: i,
		})
	}

	if err := s.repo.Create(ctx, place, media); err != nil {
		s.cleanup(ctx, uploaded)
		return nil, err
	}

	if err := s.indexer.IndexPlace(place); err != nil {
		s.log.Warnw("failed to index place", "place_id", place.ID, "error", err)
	}

	res := toPlaceResponse(place)
	return &res, nil
}

func (s *placeService) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.storage.Delete(ctx, url); err != nil {
			s.log.Warnw("failed to remove uploaded media", "url", url, "error", err)
		}
	}
}

func mediaType(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}

func (s *placeService) Get(ctx context.Context, id uuid.UUID) (*placeDto.PlaceDetailResponse, error) {
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &placeDto.PlaceDetailResponse{PlaceResponse: toPlaceResponse(place)}
	if ad := s.ads.PickForDetail(ctx, entity.AdPositionPlaceDetail); ad != nil {
		adRes := s.ads.ToResponse(*ad)
		res.Ad = &adRes
	}
	return res, nil
}

func (s *placeService) List(ctx context.Context, query placeDto.ListPlacesQuery) (*placeDto.PlaceListResponse, error) {
	places, total, err := s.repo.List(ctx, placeRepo.ListFilter{
		Category: query.Category,
		Region:   query.Region,
		Limit:    query.Limit,
		Offset:   query.Offset(),
	})
	if err != nil {
		return nil, err
	}

	cards := make([]placeDto.PlaceCard, 0, len(places))
	for _, p := range places {
		cards = append(cards, ToCard(p))
	}
	return &placeDto.PlaceListResponse{
		Data: cards,
		Meta: commonDto.NewPaginationMeta(query.Pagination, total),
	}, nil
}

func (s *placeService) Markers(ctx context.Context) ([]placeDto.MarkerResponse, error) {
	places, err := s.repo.Markers(ctx)
	if err != nil {
		return nil, err
	}

	markers := make([]placeDto.MarkerResponse, 0, len(places))
	for _, p := range places {
		markers = append(markers, placeDto.MarkerResponse{
			ID:        p.ID,
			Name:      p.Name,
			Category:  p.Category,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
	}
	return markers, nil
}

// Delete is open to the owner and to staff.
func (s *placeService) Delete(ctx context.Context, actor uuid.UUID, isStaff bool, id uuid.UUID) error {
	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if place.UserID != actor && !isStaff {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own places")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil {
		urls := make([]string, 0, len(place.Media))
		for _, m := range place.Media {
			urls = append(urls, m.MediaURL)
		}
		s.cleanup(ctx, urls)
	}
	if err := s.indexer.DeletePlace(id.String()); err != nil {
		s.log.Warnw("failed to remove place from index", "place_id", id, "error", err)
	}
	return nil
}

// ToCard reduces a place with preloaded media to its feed card.
func ToCard(p entity.Place) placeDto.PlaceCard {
	card := placeDto.PlaceCard{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Region:    p.Region,
		CreatedAt: p.CreatedAt,
	}
	for _, m := range p.Media {
		if m.MediaType == "image" {
			url := m.MediaURL
			card.CoverURL = &url
			break
		}
	}
	return card
}

func toPlaceResponse(p *entity.Place) placeDto.PlaceResponse {
	res := placeDto.PlaceResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Region:      p.Region,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Author:      commonDto.AuthorResponse{ID: p.UserID},
		Media:       make([]placeDto.MediaResponse, 0, len(p.Media)),
		CreatedAt:   p.CreatedAt,
	}
	if p.User != nil {
		res.Author.Username = p.User.Username
		res.Author.AvatarURL = p.User.AvatarURL
	}
	for _, m := range p.Media {
		res.Media = append(res.Media, placeDto.MediaResponse{
			ID:           m.ID,
			MediaURL:     m.MediaURL,
			MediaType:    m.MediaType,
			DisplayOrder: m.DisplayOrder,
		})
	}
	return res
}
