package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendStatus string

const (
	FriendStatusPending  FriendStatus = "pending"
	FriendStatusAccepted FriendStatus = "accepted"
)

// FriendEdge is a directed friend request. UserID sent the request to
// FriendID; the pair is unique regardless of direction (see bootstrap).
type FriendEdge struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FriendID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"friend_id"`
	Friend      *User        `gorm:"foreignKey:FriendID;constraint:OnDelete:CASCADE" json:"friend,omitempty"`
	RequestedBy uuid.UUID    `gorm:"type:uuid;not null" json:"requested_by"`
	Status      FriendStatus `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (FriendEdge) TableName() string {
	return "user_friends"
}

func (f *FriendEdge) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// Other returns the party of the edge that is not userID.
func (f *FriendEdge) Other(userID uuid.UUID) uuid.UUID {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}

// Touches reports whether userID is either endpoint of the edge.
func (f *FriendEdge) Touches(userID uuid.UUID) bool {
	return f.UserID == userID || f.FriendID == userID
}

type Message struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_pair,priority:1" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
	ReceiverID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_pair,priority:2" json:"receiver_id"`
	Content    *string   `gorm:"type:text" json:"content,omitempty"`
	MediaURL   *string   `gorm:"type:text" json:"media_url,omitempty"`
	IsRead     bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_messages_pair,priority:3" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}

// Between reports whether the message was exchanged by exactly a and b.
func (m *Message) Between(a, b uuid.UUID) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // recipient
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	Actor     *User     `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	EntityID  uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`
	Type      string    `gorm:"type:varchar(50);not null" json:"type"` // friend_request, friend_accepted, message
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

const (
	NotificationFriendRequest  = "friend_request"
	NotificationFriendAccepted = "friend_accepted"
	NotificationMessage        = "message"
)
