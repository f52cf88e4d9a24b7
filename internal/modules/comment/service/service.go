package service

import (
	"context"

	"anoa.com/wanderhub/internal/entity"
	commentDto "anoa.com/wanderhub/internal/modules/comment/dto"
	commentRepo "anoa.com/wanderhub/internal/modules/comment/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/broker"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxContentLength = 1000

type CommentService interface {
	Create(ctx context.Context, userID uuid.UUID, target entity.Target, input commentDto.CreateCommentInput) (*commentDto.CommentResponse, error)
	List(ctx context.Context, target entity.Target, query commentDto.ListCommentsQuery) (*commentDto.CommentListResponse, error)
	// Delete is allowed for the author and for staff.
	Delete(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID) error
}

type commentService struct {
	repo      commentRepo.CommentRepository
	publisher broker.Publisher
	log       *zap.SugaredLogger
}

func NewCommentService(repo commentRepo.CommentRepository, publisher broker.Publisher, log *zap.SugaredLogger) CommentService {
	return &commentService{repo: repo, publisher: publisher, log: log}
}

func validTarget(target entity.Target) error {
	col, _, ok := target.Column()
	if !ok || col == "comment_id" {
		return apperror.Wrap(apperror.ErrBadRequest, "a comment needs exactly one place or event")
	}
	return nil
}

func (s *commentService) Create(ctx context.Context, userID uuid.UUID, target entity.Target, input commentDto.CreateCommentInput) (*commentDto.CommentResponse, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}

	content := sanitize.Text(input.Content)
	if content == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "comment cannot be empty")
	}
	if len([]rune(content)) > maxContentLength {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "comment is too long")
	}

	comment := &entity.Comment{
		UserID:  userID,
		PlaceID: target.PlaceID,
		EventID: target.EventID,
		Content: content,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		s.log.Errorw("failed to create comment", "user_id", userID, "error", err)
		return nil, err
	}

	if err := s.publisher.Publish(ctx, "comment.created", comment.ID.String(), map[string]any{
		"user_id":  userID,
		"place_id": comment.PlaceID,
		"event_id": comment.EventID,
	}); err != nil {
		s.log.Warnw("failed to publish comment event", "comment_id", comment.ID, "error", err)
	}

	res := toResponse(*comment)
	return &res, nil
}

func (s *commentService) List(ctx context.Context, target entity.Target, query commentDto.ListCommentsQuery) (*commentDto.CommentListResponse, error) {
	if err := validTarget(target); err != nil {
		return nil, err
	}

	comments, total, err := s.repo.ListByTarget(ctx, target, query.Limit, query.Offset())
	if err != nil {
		return nil, err
	}

	data := make([]commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, toResponse(c))
	}

	return &commentDto.CommentListResponse{
		Data: data,
		Meta: commonDto.NewPaginationMeta(query.Pagination, total),
	}, nil
}

func (s *commentService) Delete(ctx context.Context, userID uuid.UUID, isStaff bool, id uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID && !isStaff {
		return apperror.Wrap(apperror.ErrForbidden, "only the author can delete this comment")
	}
	return s.repo.Delete(ctx, id)
}

func toResponse(c entity.Comment) commentDto.CommentResponse {
	res := commentDto.CommentResponse{
		ID:        c.ID,
		Content:   c.Content,
		Author:    commonDto.AuthorResponse{ID: c.UserID},
		CreatedAt: c.CreatedAt,
	}
	if c.User != nil {
		res.Author.Username = c.User.Username
		res.Author.AvatarURL = c.User.AvatarURL
	}
	return res
}
