package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	notifRepo "anoa.com/wanderhub/internal/modules/notification/repository"
	"anoa.com/wanderhub/pkg/realtime"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Channel is the pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// Notify is the fire-and-forget form used by other modules; failures
	// are logged and never bubble up to the triggering action.
	Notify(ctx context.Context, recipient, actor, entityID uuid.UUID, kind, message string)
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo   notifRepo.NotificationRepository
	pubsub realtime.PubSub
	log    *zap.SugaredLogger
}

func NewNotificationService(repo notifRepo.NotificationRepository, pubsub realtime.PubSub, log *zap.SugaredLogger) NotificationService {
	return &notificationService{
		repo:   repo,
		pubsub: pubsub,
		log:    log,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.pubsub != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.pubsub.Publish(ctx, Channel(notification.UserID), payload); err != nil {
				s.log.Warnw("failed to publish notification", "user_id", notification.UserID, "error", err)
			}
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, recipient, actor, entityID uuid.UUID, kind, message string) {
	if recipient == actor {
		return
	}
	n := &entity.Notification{
		UserID:   recipient,
		ActorID:  actor,
		EntityID: entityID,
		Type:     kind,
		Message:  message,
	}
	if err := s.CreateNotification(ctx, n); err != nil {
		s.log.Warnw("failed to create notification", "user_id", recipient, "type", kind, "error", err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
