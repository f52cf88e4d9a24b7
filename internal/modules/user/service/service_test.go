package service

import (
	"context"
	"strings"
	"testing"

	"anoa.com/wanderhub/internal/entity"
	userDto "anoa.com/wanderhub/internal/modules/user/dto"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/storage/storagetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*entity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Upsert(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Search(ctx context.Context, query string, exclude []uuid.UUID, limit int) ([]entity.User, error) {
	args := m.Called(ctx, query, exclude, limit)
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestProfileService_UpsertProfile(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("new profile keeps default role and sanitises bio", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, userID).Return(nil, apperror.ErrNotFound)
		repo.On("Upsert", ctx, mock.MatchedBy(func(u *entity.User) bool {
			return u.ID == userID && u.Username == "rin" && u.Role == entity.RoleUser && *u.Bio == "hello"
		})).Return(nil)

		svc := NewProfileService(repo, storagetest.NewFake())
		bio := "<b>hello</b>"
		res, err := svc.UpsertProfile(ctx, userID, userDto.UpsertProfileInput{Username: " rin ", Bio: &bio}, nil)

		require.NoError(t, err)
		assert.Equal(t, "rin", res.Username)
		repo.AssertExpectations(t)
	})

	t.Run("existing admin keeps role", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, userID).Return(&entity.User{ID: userID, Username: "old", Role: entity.RoleAdmin}, nil)
		repo.On("Upsert", ctx, mock.Anything).Return(nil)

		svc := NewProfileService(repo, storagetest.NewFake())
		res, err := svc.UpsertProfile(ctx, userID, userDto.UpsertProfileInput{Username: "new"}, nil)

		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, res.Role)
	})

	t.Run("avatar removed when upsert conflicts", func(t *testing.T) {
		repo := new(mockUserRepo)
		repo.On("FindByID", ctx, userID).Return(nil, apperror.ErrNotFound)
		repo.On("Upsert", ctx, mock.Anything).Return(apperror.Wrap(apperror.ErrConflict, "username already taken"))

		store := storagetest.NewFake()
		svc := NewProfileService(repo, store)
		avatar := &commonDto.UploadFile{Reader: strings.NewReader("img"), FileName: "me.png"}
		_, err := svc.UpsertProfile(ctx, userID, userDto.UpsertProfileInput{Username: "taken"}, avatar)

		assert.ErrorIs(t, err, apperror.ErrConflict)
		assert.Equal(t, 0, store.Stored())
		assert.Len(t, store.Deleted, 1)
	})

	t.Run("markup-only username rejected", func(t *testing.T) {
		svc := NewProfileService(new(mockUserRepo), nil)
		_, err := svc.UpsertProfile(ctx, userID, userDto.UpsertProfileInput{Username: "<i></i>"}, nil)
		assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	})
}
