package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"anoa.com/wanderhub/internal/entity"
	friendDto "anoa.com/wanderhub/internal/modules/friend/dto"
	msgDto "anoa.com/wanderhub/internal/modules/message/dto"
	msgRepo "anoa.com/wanderhub/internal/modules/message/repository"
	notifService "anoa.com/wanderhub/internal/modules/notification/service"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/broker"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/realtime"
	"anoa.com/wanderhub/pkg/sanitize"
	"anoa.com/wanderhub/pkg/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const ReloadEventType = "reload"

// ConversationChannel names the pub/sub channel shared by both participants.
func ConversationChannel(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if hi < lo {
		lo, hi = hi, lo
	}
	return "chat:" + lo + ":" + hi
}

type Friends interface {
	AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]friendDto.FriendResponse, error)
}

type Limiter interface {
	Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, error)
}

type MessageService interface {
	SendMessage(ctx context.Context, sender, receiver uuid.UUID, input msgDto.SendMessageInput, media *commonDto.UploadFile) (*msgDto.MessageResponse, error)
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]msgDto.MessageResponse, error)
	MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error)
	ListChats(ctx context.Context, userID uuid.UUID) ([]msgDto.ChatResponse, error)
	CanChat(ctx context.Context, a, b uuid.UUID) error
}

type messageService struct {
	repo          msgRepo.MessageRepository
	friends       Friends
	storage       storage.MediaStorage
	notifications notifService.NotificationService
	pubsub        realtime.PubSub
	limiter       Limiter
	window        time.Duration
	publisher     broker.Publisher
	log           *zap.SugaredLogger
}

func NewMessageService(
	repo msgRepo.MessageRepository,
	friends Friends,
	storage storage.MediaStorage,
	notifications notifService.NotificationService,
	pubsub realtime.PubSub,
	limiter Limiter,
	window time.Duration,
	publisher broker.Publisher,
	log *zap.SugaredLogger,
) MessageService {
	return &messageService{
		repo:          repo,
		friends:       friends,
		storage:       storage,
		notifications: notifications,
		pubsub:        pubsub,
		limiter:       limiter,
		window:        window,
		publisher:     publisher,
		log:           log,
	}
}

// CanChat reports whether a may open a conversation with b.
func (s *messageService) CanChat(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return apperror.Wrap(apperror.ErrBadRequest, "cannot message yourself")
	}
	ok, err := s.friends.AreFriends(ctx, a, b)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Wrap(apperror.ErrForbidden, "you can only message friends")
	}
	return nil
}

func (s *messageService) SendMessage(ctx context.Context, sender, receiver uuid.UUID, input msgDto.SendMessageInput, media *commonDto.UploadFile) (*msgDto.MessageResponse, error) {
	content := sanitize.Text(input.Content)
	if content == "" && media == nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "message needs text or an attachment")
	}
	if err := s.CanChat(ctx, sender, receiver); err != nil {
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, sender, "message", s.window)
	if err != nil {
		s.log.Warnw("rate limit check failed", "user_id", sender, "error", err)
	} else if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimitExceeded, "you are sending messages too fast")
	}

	msg := &entity.Message{SenderID: sender, ReceiverID: receiver}
	if content != "" {
		msg.Content = &content
	}

	var uploaded string
	if media != nil {
		if s.storage == nil {
			return nil, apperror.Wrap(apperror.ErrBadRequest, "attachments are not available")
		}
		name := fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(media.FileName))
		url, err := s.storage.Upload(ctx, media.Reader, "messages", name)
		if err != nil {
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
		uploaded = url
		msg.MediaURL = &url
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		if uploaded != "" {
			if derr := s.storage.Delete(ctx, uploaded); derr != nil {
				s.log.Warnw("failed to remove orphaned attachment", "url", uploaded, "error", derr)
			}
		}
		return nil, err
	}

	s.announce(ctx, msg)
	res := toMessageResponse(*msg)
	return &res, nil
}

// announce tells subscribers of the conversation to reload. Delivery is
// best effort; the message row is already committed.
func (s *messageService) announce(ctx context.Context, msg *entity.Message) {
	payload, _ := json.Marshal(msgDto.ReloadEvent{Type: ReloadEventType, MessageID: msg.ID})
	if err := s.pubsub.Publish(ctx, ConversationChannel(msg.SenderID, msg.ReceiverID), payload); err != nil {
		s.log.Warnw("failed to publish conversation reload", "message_id", msg.ID, "error", err)
	}

	s.notifications.Notify(ctx, msg.ReceiverID, msg.SenderID, msg.ID, entity.NotificationMessage, "sent you a message")

	if err := s.publisher.Publish(ctx, "message.sent", msg.ID.String(), map[string]any{
		"sender_id":   msg.SenderID,
		"receiver_id": msg.ReceiverID,
		"has_media":   msg.MediaURL != nil,
	}); err != nil {
		s.log.Warnw("failed to publish message sent", "message_id", msg.ID, "error", err)
	}
}

// ListConversation returns the history between a and b. Reading does not
// require a friendship, so history survives an unfriend; sending does.
func (s *messageService) ListConversation(ctx context.Context, a, b uuid.UUID) ([]msgDto.MessageResponse, error) {
	if a == b {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "cannot message yourself")
	}

	messages, err := s.repo.ListConversation(ctx, a, b)
	if err != nil {
		return nil, err
	}

	out := make([]msgDto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		if !m.Between(a, b) {
			s.log.Errorw("conversation query returned foreign message", "message_id", m.ID)
			continue
		}
		out = append(out, toMessageResponse(m))
	}
	return out, nil
}

func (s *messageService) MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error) {
	if receiver == sender {
		return 0, apperror.Wrap(apperror.ErrBadRequest, "cannot message yourself")
	}
	return s.repo.MarkRead(ctx, receiver, sender)
}

// ListChats returns one entry per friend, most recent conversation first.
// Friends without messages trail in the order they were listed.
func (s *messageService) ListChats(ctx context.Context, userID uuid.UUID) ([]msgDto.ChatResponse, error) {
	friends, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.repo.LatestPerConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadBySender(ctx, userID)
	if err != nil {
		return nil, err
	}

	last := make(map[uuid.UUID]entity.Message, len(latest))
	for _, m := range latest {
		other := m.SenderID
		if other == userID {
			other = m.ReceiverID
		}
		last[other] = m
	}

	chats := make([]msgDto.ChatResponse, 0, len(friends))
	for _, f := range friends {
		chat := msgDto.ChatResponse{Friend: f.AuthorResponse, UnreadCount: unread[f.ID]}
		if m, ok := last[f.ID]; ok {
			res := toMessageResponse(m)
			chat.LastMessage = &res
		}
		chats = append(chats, chat)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		a, b := chats[i].LastMessage, chats[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return chats, nil
}

func toMessageResponse(m entity.Message) msgDto.MessageResponse {
	return msgDto.MessageResponse{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		MediaURL:   m.MediaURL,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt,
	}
}
