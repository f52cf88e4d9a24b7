package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Place struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User        `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Name        string       `gorm:"size:200;not null" json:"name"`
	Description *string      `gorm:"type:text" json:"description,omitempty"`
	Category    string       `gorm:"size:20;not null;index" json:"category"` // restaurant, park, museum, nature, winery, other
	Region      string       `gorm:"size:100;not null;index" json:"region"`
	Latitude    float64      `gorm:"not null" json:"latitude"`
	Longitude   float64      `gorm:"not null" json:"longitude"`
	Media       []PlaceMedia `gorm:"foreignKey:PlaceID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Place) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type PlaceMedia struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PlaceID      uuid.UUID `gorm:"type:uuid;not null;index" json:"place_id"`
	MediaURL     string    `gorm:"type:text;not null" json:"media_url"`
	MediaType    string    `gorm:"size:10;not null" json:"media_type"` // image, video
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (PlaceMedia) TableName() string {
	return "place_media"
}
