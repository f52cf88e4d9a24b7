package dto

import (
	"time"

	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
)

type SendMessageInput struct {
	Content string `form:"content" json:"content" binding:"max=2000"`
}

type MessageResponse struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    *string   `json:"content,omitempty"`
	MediaURL   *string   `json:"media_url,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatResponse struct {
	Friend      commonDto.AuthorResponse `json:"friend"`
	LastMessage *MessageResponse         `json:"last_message,omitempty"`
	UnreadCount int64                    `json:"unread_count"`
}

type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// ReloadEvent is pushed to conversation subscribers after every insert.
type ReloadEvent struct {
	Type      string    `json:"type"`
	MessageID uuid.UUID `json:"message_id"`
}
