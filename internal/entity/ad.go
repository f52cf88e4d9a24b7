package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	AdPositionHomeFeed    = "home_feed"
	AdPositionPlaceDetail = "place_detail"
	AdPositionEventDetail = "event_detail"
	AdPositionProfile     = "profile"

	AdTypeSponsoredCard = "sponsored_card"
	AdTypeBanner        = "banner"
)

// Ad is a sponsored entry. StartDate and EndDate are calendar dates; a nil
// bound leaves that side of the window open.
type Ad struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
	ImageURL    string     `gorm:"type:text;not null" json:"image_url"`
	LinkURL     string     `gorm:"type:text" json:"link_url"`
	Position    string     `gorm:"size:20;not null;index:idx_ads_lookup,priority:2" json:"position"`
	Type        string     `gorm:"size:20;not null;default:sponsored_card" json:"type"`
	StartDate   *time.Time `gorm:"type:date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	Active      bool       `gorm:"not null;default:true;index:idx_ads_lookup,priority:1" json:"active"`
	Clicks      int64      `gorm:"not null;default:0" json:"clicks"`
	Impressions int64      `gorm:"not null;default:0" json:"impressions"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// ActiveOn reports whether the ad should be served on the given day.
func (a *Ad) ActiveOn(day time.Time) bool {
	if !a.Active {
		return false
	}
	d := DateOf(day)
	if a.StartDate != nil && DateOf(*a.StartDate).After(d) {
		return false
	}
	if a.EndDate != nil && DateOf(*a.EndDate).Before(d) {
		return false
	}
	return true
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AdCounter names one of the ad counter columns.
type AdCounter string

const (
	AdCounterImpressions AdCounter = "impressions"
	AdCounterClicks      AdCounter = "clicks"
)

func (c AdCounter) Valid() bool {
	return c == AdCounterImpressions || c == AdCounterClicks
}
