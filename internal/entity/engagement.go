package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Target identifies what a rating, like or comment is attached to. Exactly
// one field is set.
type Target struct {
	PlaceID   *uuid.UUID
	EventID   *uuid.UUID
	CommentID *uuid.UUID
}

// Column returns the foreign key column and value of the target.
func (t Target) Column() (string, uuid.UUID, bool) {
	switch {
	case t.PlaceID != nil && t.EventID == nil && t.CommentID == nil:
		return "place_id", *t.PlaceID, true
	case t.EventID != nil && t.PlaceID == nil && t.CommentID == nil:
		return "event_id", *t.EventID, true
	case t.CommentID != nil && t.PlaceID == nil && t.EventID == nil:
		return "comment_id", *t.CommentID, true
	}
	return "", uuid.Nil, false
}

type Rating struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	PlaceID       *uuid.UUID `gorm:"type:uuid;index" json:"place_id,omitempty"`
	EventID       *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Rating        int        `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	EmojiReaction *string    `gorm:"size:16" json:"emoji_reaction,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type Like struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	PlaceID   *uuid.UUID `gorm:"type:uuid;index" json:"place_id,omitempty"`
	EventID   *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	CommentID *uuid.UUID `gorm:"type:uuid;index" json:"comment_id,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User      *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	PlaceID   *uuid.UUID `gorm:"type:uuid;index" json:"place_id,omitempty"`
	EventID   *uuid.UUID `gorm:"type:uuid;index" json:"event_id,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

const (
	TargetPlace   = "place"
	TargetEvent   = "event"
	TargetComment = "comment"
)

// NewTarget builds a Target from a kind as it appears in URLs.
func NewTarget(kind string, id uuid.UUID) (Target, bool) {
	switch kind {
	case TargetPlace:
		return Target{PlaceID: &id}, true
	case TargetEvent:
		return Target{EventID: &id}, true
	case TargetComment:
		return Target{CommentID: &id}, true
	}
	return Target{}, false
}
