package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	placeRepo "anoa.com/wanderhub/internal/modules/place/repository"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/logger"
	"anoa.com/wanderhub/pkg/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPlaces struct {
	places    map[uuid.UUID]entity.Place
	createErr error
}

func newMemPlaces() *memPlaces {
	return &memPlaces{places: map[uuid.UUID]entity.Place{}}
}

func (m *memPlaces) Create(_ context.Context, place *entity.Place, media []entity.PlaceMedia) error {
	if m.createErr != nil {
		return m.createErr
	}
	for i := range media {
		media[i].ID = uint(i + 1)
		media[i].PlaceID = place.ID
	}
	place.Media = media
	m.places[place.ID] = *place
	return nil
}

func (m *memPlaces) FindByID(_ context.Context, id uuid.UUID) (*entity.Place, error) {
	p, ok := m.places[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return &p, nil
}

func (m *memPlaces) List(_ context.Context, filter placeRepo.ListFilter) ([]entity.Place, int64, error) {
	var out []entity.Place
	for _, p := range m.places {
		if filter.Category == "" || p.Category == filter.Category {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memPlaces) Markers(context.Context) ([]entity.Place, error) {
	var out []entity.Place
	for _, p := range m.places {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPlaces) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.places[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(m.places, id)
	return nil
}

func (m *memPlaces) Count(context.Context) (int64, error) { return int64(len(m.places)), nil }

type fakeIndexer struct {
	indexed []string
	deleted []string
	err     error
}

func (f *fakeIndexer) IndexPlace(p *entity.Place) error {
	f.indexed = append(f.indexed, p.ID.String())
	return f.err
}

func (f *fakeIndexer) DeletePlace(id string) error {
	f.deleted = append(f.deleted, id)
	return f.err
}

func (f *fakeIndexer) IndexEvent(*entity.Event) error { return nil }

func (f *fakeIndexer) DeleteEvent(string) error { return nil }

type fakeAds struct {
	ad    *entity.Ad
	picks []string
}

func (f *fakeAds) PickForDetail(_ context.Context, position string) *entity.Ad {
	f.picks = append(f.picks, position)
	return f.ad
}

func (f *fakeAds) ToResponse(ad entity.Ad) adDto.AdResponse {
	return adDto.AdResponse{ID: fmt.Sprint(ad.ID), Title: ad.Title}
}

func ptr[T any](v T) *T { return &v }

func validInput() placeDto.CreatePlaceInput {
	return placeDto.CreatePlaceInput{
		Name:      " <i>Harbour</i> ",
		Category:  "nature",
		Region:    "Coast",
		Latitude:  ptr(-6.1),
		Longitude: ptr(106.8),
	}
}

func files(n int) []*commonDto.UploadFile {
	out := make([]*commonDto.UploadFile, 0, n)
	for i := 0; i < n; i++ {
		ct := "image/jpeg"
		if i == 1 {
			ct = "video/mp4"
		}
		out = append(out, &commonDto.UploadFile{
			Reader:      strings.NewReader(fmt.Sprintf("file-%d", i)),
			FileName:    fmt.Sprintf("f%d.bin", i),
			ContentType: ct,
		})
	}
	return out
}

type fixture struct {
	svc     PlaceService
	repo    *memPlaces
	storage *storagetest.Fake
	indexer *fakeIndexer
	ads     *fakeAds
}

func newFixture() *fixture {
	f := &fixture{
		repo:    newMemPlaces(),
		storage: storagetest.NewFake(),
		indexer: &fakeIndexer{},
		ads:     &fakeAds{},
	}
	f.svc = NewPlaceService(f.repo, f.storage, f.indexer, f.ads, logger.Nop())
	return f
}

func TestCreate_StoresMediaInOrder(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Create(context.Background(), uuid.New(), validInput(), files(3))

	require.NoError(t, err)
	assert.Equal(t, "Harbour", res.Name)
	require.Len(t, res.Media, 3)
	assert.Equal(t, "image", res.Media[0].MediaType)
	assert.Equal(t, "video", res.Media[1].MediaType)
	assert.Equal(t, 2, res.Media[2].DisplayOrder)
	assert.Equal(t, 3, f.storage.Stored())
	assert.Equal(t, []string{res.ID.String()}, f.indexer.indexed)
}

func TestCreate_PartialFailureLeavesNothing(t *testing.T) {
	tests := []struct {
		name      string
		failOn    int
		createErr error
		wantErr   error
	}{
		{name: "third upload fails", failOn: 3, wantErr: storagetest.ErrUploadFailed},
		{name: "insert fails", createErr: errors.New("tx aborted")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.storage.FailOn = tt.failOn
			f.repo.createErr = tt.createErr

			_, err := f.svc.Create(context.Background(), uuid.New(), validInput(), files(4))

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Zero(t, f.storage.Stored(), "uploaded files are removed")
			assert.Empty(t, f.repo.places)
			assert.Empty(t, f.indexer.indexed)
		})
	}
}

func TestCreate_TooManyFiles(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), uuid.New(), validInput(), files(placeDto.MaxMediaFiles+1))

	assert.ErrorIs(t, err, apperror.ErrBadRequest)
	assert.Zero(t, f.storage.Stored())
}

func TestCreate_RequiresCoordinates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*placeDto.CreatePlaceInput)
	}{
		{"missing latitude", func(in *placeDto.CreatePlaceInput) { in.Latitude = nil }},
		{"missing longitude", func(in *placeDto.CreatePlaceInput) { in.Longitude = nil }},
		{"latitude out of range", func(in *placeDto.CreatePlaceInput) { in.Latitude = ptr(91.0) }},
		{"longitude out of range", func(in *placeDto.CreatePlaceInput) { in.Longitude = ptr(-180.5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			input := validInput()
			tt.mutate(&input)

			var err error
			assert.NotPanics(t, func() {
				_, err = f.svc.Create(context.Background(), uuid.New(), input, files(1))
			})
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.Zero(t, f.storage.Stored())
			assert.Empty(t, f.repo.places)
		})
	}
}

func TestCreate_IndexFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.indexer.err = errors.New("meili down")

	_, err := f.svc.Create(context.Background(), uuid.New(), validInput(), nil)

	assert.NoError(t, err)
	assert.Len(t, f.repo.places, 1)
}

func TestGet_AttachesDetailAd(t *testing.T) {
	f := newFixture()
	f.ads.ad = &entity.Ad{ID: 7, Title: "Coffee"}
	created, err := f.svc.Create(context.Background(), uuid.New(), validInput(), nil)
	require.NoError(t, err)

	res, err := f.svc.Get(context.Background(), created.ID)

	require.NoError(t, err)
	require.NotNil(t, res.Ad)
	assert.Equal(t, "Coffee", res.Ad.Title)
	assert.Equal(t, []string{entity.AdPositionPlaceDetail}, f.ads.picks)
}

func TestDelete(t *testing.T) {
	owner, other := uuid.New(), uuid.New()

	tests := []struct {
		name    string
		actor   uuid.UUID
		staff   bool
		wantErr error
	}{
		{name: "owner", actor: owner},
		{name: "staff", actor: other, staff: true},
		{name: "someone else", actor: other, wantErr: apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			created, err := f.svc.Create(context.Background(), owner, validInput(), files(2))
			require.NoError(t, err)

			err = f.svc.Delete(context.Background(), tt.actor, tt.staff, created.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 2, f.storage.Stored())
				return
			}
			require.NoError(t, err)
			assert.Empty(t, f.repo.places)
			assert.Zero(t, f.storage.Stored())
			assert.Equal(t, []string{created.ID.String()}, f.indexer.deleted)
		})
	}
}

func TestToCard_UsesFirstImage(t *testing.T) {
	p := entity.Place{
		Name: "Museum",
		Media: []entity.PlaceMedia{
			{MediaURL: "v.mp4", MediaType: "video"},
			{MediaURL: "a.jpg", MediaType: "image"},
			{MediaURL: "b.jpg", MediaType: "image"},
		},
	}

	card := ToCard(p)

	require.NotNil(t, card.CoverURL)
	assert.Equal(t, "a.jpg", *card.CoverURL)
	assert.Nil(t, ToCard(entity.Place{}).CoverURL)
}
