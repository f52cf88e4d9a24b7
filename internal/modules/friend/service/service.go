package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"anoa.com/wanderhub/internal/entity"
	friendDto "anoa.com/wanderhub/internal/modules/friend/dto"
	friendRepo "anoa.com/wanderhub/internal/modules/friend/repository"
	notifService "anoa.com/wanderhub/internal/modules/notification/service"
	userRepo "anoa.com/wanderhub/internal/modules/user/repository"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/broker"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const searchLimit = 20

type Limiter interface {
	Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error)
}

type FriendService interface {
	SendRequest(ctx context.Context, from, to uuid.UUID) (*friendDto.RequestResponse, error)
	AcceptRequest(ctx context.Context, actor, edgeID uuid.UUID) (*friendDto.RequestResponse, error)
	RejectRequest(ctx context.Context, actor, edgeID uuid.UUID) error
	RemoveFriend(ctx context.Context, a, b uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]friendDto.FriendResponse, error)
	ListPending(ctx context.Context, userID uuid.UUID) ([]friendDto.RequestResponse, error)
	ListOutgoing(ctx context.Context, userID uuid.UUID) ([]friendDto.RequestResponse, error)
	SearchUsers(ctx context.Context, viewer uuid.UUID, query string) ([]friendDto.UserSearchResult, error)
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
}

type friendService struct {
	repo          friendRepo.FriendRepository
	users         userRepo.UserRepository
	notifications notifService.NotificationService
	limiter       Limiter
	window        time.Duration
	publisher     broker.Publisher
	log           *zap.SugaredLogger
}

func NewFriendService(
	repo friendRepo.FriendRepository,
	users userRepo.UserRepository,
	notifications notifService.NotificationService,
	limiter Limiter,
	window time.Duration,
	publisher broker.Publisher,
	log *zap.SugaredLogger,
) FriendService {
	return &friendService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		limiter:       limiter,
		window:        window,
		publisher:     publisher,
		log:           log,
	}
}

// SendRequest creates a pending edge from -> to. A pending request already
// sent the other way is accepted instead; any other existing edge is a
// conflict.
func (s *friendService) SendRequest(ctx context.Context, from, to uuid.UUID) (*friendDto.RequestResponse, error) {
	if from == to {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "cannot send a friend request to yourself")
	}
	if _, err := s.users.FindByID(ctx, to); err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, from, "friend_request", s.window)
	if err != nil {
		s.log.Warnw("rate limit check failed", "user_id", from, "error", err)
	} else if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimitExceeded, "please wait before sending another friend request")
	}

	if res, handled, err := s.resolveExisting(ctx, from, to); handled {
		return res, err
	}

	edge := &entity.FriendEdge{
		UserID:      from,
		FriendID:    to,
		RequestedBy: from,
		Status:      entity.FriendStatusPending,
	}
	if err := s.repo.Create(ctx, edge); err != nil {
		// Lost a race with a concurrent request for the same pair.
		if errors.Is(err, apperror.ErrConflict) {
			if res, handled, rerr := s.resolveExisting(ctx, from, to); handled {
				return res, rerr
			}
		}
		return nil, err
	}

	s.notifications.Notify(ctx, to, from, edge.ID, entity.NotificationFriendRequest, "sent you a friend request")
	return s.toRequestResponse(ctx, edge)
}

func (s *friendService) resolveExisting(ctx context.Context, from, to uuid.UUID) (*friendDto.RequestResponse, bool, error) {
	existing, err := s.repo.FindBetween(ctx, from, to)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}

	switch {
	case existing.Status == entity.FriendStatusAccepted:
		return nil, true, apperror.Wrap(apperror.ErrConflict, "already friends")
	case existing.UserID == to:
		res, err := s.accept(ctx, existing, from)
		return res, true, err
	default:
		return nil, true, apperror.Wrap(apperror.ErrConflict, "friend request already sent")
	}
}

// AcceptRequest is only open to the user the request was sent to.
func (s *friendService) AcceptRequest(ctx context.Context, actor, edgeID uuid.UUID) (*friendDto.RequestResponse, error) {
	edge, err := s.repo.FindByID(ctx, edgeID)
	if err != nil {
		return nil, err
	}
	if edge.FriendID != actor {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the recipient can accept this request")
	}
	if edge.Status != entity.FriendStatusPending {
		return nil, apperror.Wrap(apperror.ErrConflict, "friend request is no longer pending")
	}
	return s.accept(ctx, edge, actor)
}

func (s *friendService) accept(ctx context.Context, edge *entity.FriendEdge, actor uuid.UUID) (*friendDto.RequestResponse, error) {
	if err := s.repo.Accept(ctx, edge.ID); err != nil {
		return nil, err
	}
	edge.Status = entity.FriendStatusAccepted

	s.notifications.Notify(ctx, edge.UserID, actor, edge.ID, entity.NotificationFriendAccepted, "accepted your friend request")
	if err := s.publisher.Publish(ctx, "friend.accepted", edge.ID.String(), map[string]any{
		"user_id":   edge.UserID,
		"friend_id": edge.FriendID,
	}); err != nil {
		s.log.Warnw("failed to publish friend accepted", "edge_id", edge.ID, "error", err)
	}

	return s.toRequestResponse(ctx, edge)
}

// RejectRequest lets either side drop a pending request.
func (s *friendService) RejectRequest(ctx context.Context, actor, edgeID uuid.UUID) error {
	edge, err := s.repo.FindByID(ctx, edgeID)
	if err != nil {
		return err
	}
	if !edge.Touches(actor) {
		return apperror.Wrap(apperror.ErrForbidden, "not your friend request")
	}
	if edge.Status != entity.FriendStatusPending {
		return apperror.Wrap(apperror.ErrBadRequest, "request already accepted, remove the friend instead")
	}
	return s.repo.Delete(ctx, edge.ID)
}

func (s *friendService) RemoveFriend(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return apperror.Wrap(apperror.ErrBadRequest, "cannot remove yourself")
	}
	n, err := s.repo.DeleteBetween(ctx, a, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.Wrap(apperror.ErrNotFound, "not friends")
	}
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]friendDto.FriendResponse, error) {
	edges, err := s.repo.ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]friendDto.FriendResponse, 0, len(edges))
	for _, e := range edges {
		other := e.Friend
		if e.FriendID == userID {
			other = e.User
		}
		friends = append(friends, friendDto.FriendResponse{
			AuthorResponse: author(e.Other(userID), other),
			Since:          e.UpdatedAt,
		})
	}
	return friends, nil
}

func (s *friendService) ListPending(ctx context.Context, userID uuid.UUID) ([]friendDto.RequestResponse, error) {
	edges, err := s.repo.ListIncoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(edges), nil
}

func (s *friendService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]friendDto.RequestResponse, error) {
	edges, err := s.repo.ListOutgoing(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(edges), nil
}

// SearchUsers finds people to befriend: the viewer and existing friends are
// left out, pending requests are flagged.
func (s *friendService) SearchUsers(ctx context.Context, viewer uuid.UUID, query string) ([]friendDto.UserSearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "search query is required")
	}

	edges, err := s.repo.ListTouching(ctx, viewer)
	if err != nil {
		return nil, err
	}

	exclude := []uuid.UUID{viewer}
	sent := map[uuid.UUID]bool{}
	received := map[uuid.UUID]bool{}
	for _, e := range edges {
		other := e.Other(viewer)
		switch {
		case e.Status == entity.FriendStatusAccepted:
			exclude = append(exclude, other)
		case e.UserID == viewer:
			sent[other] = true
		default:
			received[other] = true
		}
	}

	users, err := s.users.Search(ctx, query, exclude, searchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]friendDto.UserSearchResult, 0, len(users))
	for i := range users {
		u := users[i]
		results = append(results, friendDto.UserSearchResult{
			AuthorResponse:  author(u.ID, &u),
			RequestSent:     sent[u.ID],
			RequestReceived: received[u.ID],
		})
	}
	return results, nil
}

func (s *friendService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	return s.repo.AreFriends(ctx, a, b)
}

func (s *friendService) toRequestResponse(ctx context.Context, edge *entity.FriendEdge) (*friendDto.RequestResponse, error) {
	if edge.User == nil || edge.Friend == nil {
		users, err := s.users.FindByIDs(ctx, []uuid.UUID{edge.UserID, edge.FriendID})
		if err != nil {
			return nil, err
		}
		for i := range users {
			switch users[i].ID {
			case edge.UserID:
				edge.User = &users[i]
			case edge.FriendID:
				edge.Friend = &users[i]
			}
		}
	}
	res := toRequestResponse(*edge)
	return &res, nil
}

func toRequestResponse(e entity.FriendEdge) friendDto.RequestResponse {
	return friendDto.RequestResponse{
		ID:        e.ID,
		From:      author(e.UserID, e.User),
		To:        author(e.FriendID, e.Friend),
		Status:    string(e.Status),
		CreatedAt: e.CreatedAt,
	}
}

func toRequestResponses(edges []entity.FriendEdge) []friendDto.RequestResponse {
	out := make([]friendDto.RequestResponse, 0, len(edges))
	for _, e := range edges {
		out = append(out, toRequestResponse(e))
	}
	return out
}

func author(id uuid.UUID, u *entity.User) commonDto.AuthorResponse {
	a := commonDto.AuthorResponse{ID: id}
	if u != nil {
		a.Username = u.Username
		a.AvatarURL = u.AvatarURL
	}
	return a
}
