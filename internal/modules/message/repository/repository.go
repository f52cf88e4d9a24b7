package repository

import (
	"context"
	"fmt"

	"anoa.com/wanderhub/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const pairPredicate = "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	ListConversation(ctx context.Context, a, b uuid.UUID) ([]entity.Message, error)
	MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error)
	LatestPerConversation(ctx context.Context, userID uuid.UUID) ([]entity.Message, error)
	UnreadBySender(ctx context.Context, receiver uuid.UUID) (map[uuid.UUID]int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, a, b uuid.UUID) ([]entity.Message, error) {
	var messages []entity.Message
	err := r.db.WithContext(ctx).
		Where(pairPredicate, a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return messages, nil
}

// MarkRead flags everything sender has sent to receiver as read.
func (r *messageRepository) MarkRead(ctx context.Context, receiver, sender uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", sender, receiver, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, fmt.Errorf("mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// LatestPerConversation returns the newest message of every conversation
// userID takes part in.
func (r *messageRepository) LatestPerConversation(ctx context.Context, userID uuid.UUID) ([]entity.Message, error) {
	var messages []entity.Message
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id)) *
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY LEAST(sender_id, receiver_id), GREATEST(sender_id, receiver_id), created_at DESC, id DESC`,
		userID, userID).
		Scan(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list latest messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) UnreadBySender(ctx context.Context, receiver uuid.UUID) (map[uuid.UUID]int64, error) {
	var rows []struct {
		SenderID uuid.UUID
		Count    int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND is_read = ?", receiver, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count unread messages: %w", err)
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}
