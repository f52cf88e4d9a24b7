package dto

import (
	"time"

	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
)

const MaxMediaFiles = 10

// CreatePlaceInput is bound from a multipart form; media files travel in
// the "media" field.
type CreatePlaceInput struct {
	Name        string   `form:"name" json:"name" binding:"required,min=1,max=200"`
	Description *string  `form:"description" json:"description" binding:"omitempty,max=5000"`
	Category    string   `form:"category" json:"category" binding:"required,oneof=restaurant park museum nature winery other"`
	Region      string   `form:"region" json:"region" binding:"required,min=1,max=100"`
	Latitude    *float64 `form:"latitude" json:"latitude" binding:"required,min=-90,max=90"`
	Longitude   *float64 `form:"longitude" json:"longitude" binding:"required,min=-180,max=180"`
}

type ListPlacesQuery struct {
	commonDto.Pagination
	Category string `form:"category" binding:"omitempty,oneof=restaurant park museum nature winery other"`
	Region   string `form:"region" binding:"omitempty,max=100"`
}

type MediaResponse struct {
	ID           uint   `json:"id"`
	MediaURL     string `json:"media_url"`
	MediaType    string `json:"media_type"`
	DisplayOrder int    `json:"display_order"`
}

type PlaceResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Description *string                  `json:"description"`
	Category    string                   `json:"category"`
	Region      string                   `json:"region"`
	Latitude    float64                  `json:"latitude"`
	Longitude   float64                  `json:"longitude"`
	Author      commonDto.AuthorResponse `json:"author"`
	Media       []MediaResponse          `json:"media"`
	CreatedAt   time.Time                `json:"created_at"`
}

// PlaceDetailResponse carries one banner ad for the detail page.
type PlaceDetailResponse struct {
	PlaceResponse
	Ad *adDto.AdResponse `json:"ad,omitempty"`
}

// PlaceCard is the feed view of a place: only the first image is sent.
type PlaceCard struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Region    string    `json:"region"`
	CoverURL  *string   `json:"cover_url"`
	CreatedAt time.Time `json:"created_at"`
}

type PlaceListResponse struct {
	Data []PlaceCard              `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type MarkerResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}
