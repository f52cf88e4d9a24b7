package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Event struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Name        string     `gorm:"size:200;not null" json:"name"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	EventType   string     `gorm:"size:20;not null;index" json:"event_type"` // concert, festival, tour, other
	StartDate   time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Location    string     `gorm:"size:255;not null" json:"location"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	SourceURL   *string    `gorm:"type:text;uniqueIndex" json:"source_url,omitempty"` // set by the feed importer
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (e *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID, err = uuid.NewV7()
	}
	return
}
