package service

import (
	"context"
	"fmt"
	"path/filepath"

	"anoa.com/wanderhub/internal/entity"
	userDto "anoa.com/wanderhub/internal/modules/user/dto"
	userRepo "anoa.com/wanderhub/internal/modules/user/repository"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/sanitize"
	"anoa.com/wanderhub/pkg/storage"
	"github.com/google/uuid"
)

type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*userDto.ProfileResponse, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, input userDto.UpsertProfileInput, avatar *commonDto.UploadFile) (*userDto.ProfileResponse, error)
}

type profileService struct {
	repo    userRepo.UserRepository
	storage storage.MediaStorage
}

func NewProfileService(repo userRepo.UserRepository, storage storage.MediaStorage) ProfileService {
	return &profileService{repo: repo, storage: storage}
}

func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*userDto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(user), nil
}

func (s *profileService) UpsertProfile(ctx context.Context, userID uuid.UUID, input userDto.UpsertProfileInput, avatar *commonDto.UploadFile) (*userDto.ProfileResponse, error) {
	username := sanitize.Text(input.Username)
	if username == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "username is required")
	}

	user := &entity.User{ID: userID, Username: username, Role: entity.RoleUser}
	if existing, err := s.repo.FindByID(ctx, userID); err == nil {
		user.AvatarURL = existing.AvatarURL
		user.Role = existing.Role
		user.CreatedAt = existing.CreatedAt
	}

	if input.Bio != nil {
		bio := sanitize.Text(*input.Bio)
		user.Bio = &bio
	}

	var uploaded string
	if avatar != nil && s.storage != nil {
		name := fmt.Sprintf("%s%s", userID, filepath.Ext(avatar.FileName))
		url, err := s.storage.Upload(ctx, avatar.Reader, "avatars", name)
		if err != nil {
			return nil, fmt.Errorf("upload avatar: %w", err)
		}
		uploaded = url
		user.AvatarURL = &url
	}

	if err := s.repo.Upsert(ctx, user); err != nil {
		if uploaded != "" {
			_ = s.storage.Delete(ctx, uploaded)
		}
		return nil, err
	}

	return toProfileResponse(user), nil
}

func toProfileResponse(u *entity.User) *userDto.ProfileResponse {
	return &userDto.ProfileResponse{
		ID:        u.ID,
		Username:  u.Username,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
