package dto

import "time"

type SelectAdsQuery struct {
	Position string `form:"position" binding:"required,oneof=home_feed place_detail event_detail profile"`
	Type     string `form:"type" binding:"omitempty,oneof=sponsored_card banner"`
}

// AdInput is bound from multipart forms so an image file can accompany it.
type AdInput struct {
	Title       string  `form:"title" json:"title" binding:"required,min=1,max=200"`
	Description *string `form:"description" json:"description" binding:"omitempty,max=1000"`
	ImageURL    string  `form:"image_url" json:"image_url" binding:"omitempty,url"`
	LinkURL     string  `form:"link_url" json:"link_url" binding:"omitempty,url"`
	Position    string  `form:"position" json:"position" binding:"required,oneof=home_feed place_detail event_detail profile"`
	Type        string  `form:"type" json:"type" binding:"omitempty,oneof=sponsored_card banner"`
	StartDate   *string `form:"start_date" json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     *string `form:"end_date" json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Active      *bool   `form:"active" json:"active"`
}

type ToggleInput struct {
	Active bool `json:"active"`
}

type AdResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	ImageURL    string    `json:"image_url"`
	LinkURL     string    `json:"link_url"`
	Position    string    `json:"position"`
	Type        string    `json:"type"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Active      bool      `json:"active"`
	Clicks      int64     `json:"clicks"`
	Impressions int64     `json:"impressions"`
	CTR         float64   `json:"ctr"`
	CreatedAt   time.Time `json:"created_at"`
}

type ClickResponse struct {
	LinkURL string `json:"link_url"`
}

type AnalyticsResponse struct {
	TotalAds         int64        `json:"total_ads"`
	ActiveAds        int64        `json:"active_ads"`
	TotalImpressions int64        `json:"total_impressions"`
	TotalClicks      int64        `json:"total_clicks"`
	AverageCTR       float64      `json:"average_ctr"`
	TopPerforming    []AdResponse `json:"top_performing_ads"`
}
