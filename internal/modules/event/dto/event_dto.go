package dto

import (
	"time"

	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateEventInput struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	EventType   string   `json:"event_type" binding:"required,oneof=concert festival tour other"`
	StartDate   string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     *string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Location    string   `json:"location" binding:"required,min=1,max=255"`
	Latitude    *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

type ListEventsQuery struct {
	EventType string `form:"event_type" binding:"omitempty,oneof=concert festival tour other"`
	Limit     int    `form:"limit,default=10" binding:"min=1,max=50"`
}

type EventResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Description *string                  `json:"description"`
	EventType   string                   `json:"event_type"`
	StartDate   time.Time                `json:"start_date"`
	EndDate     *time.Time               `json:"end_date"`
	Location    string                   `json:"location"`
	Latitude    *float64                 `json:"latitude"`
	Longitude   *float64                 `json:"longitude"`
	SourceURL   *string                  `json:"source_url,omitempty"`
	Author      commonDto.AuthorResponse `json:"author"`
	CreatedAt   time.Time                `json:"created_at"`
}

type EventDetailResponse struct {
	EventResponse
	Ad *adDto.AdResponse `json:"ad,omitempty"`
}

type MarkerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	EventType string    `json:"event_type"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

type ImportResponse struct {
	Feeds    int   `json:"feeds"`
	Inserted int64 `json:"inserted"`
}
