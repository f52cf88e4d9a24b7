package dto

import (
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	commonDto "anoa.com/wanderhub/pkg/dto"
)

const (
	KindPlace = "place"
	KindAd    = "ad"
)

type HomeQuery struct {
	placeDto.ListPlacesQuery
	EventType string `form:"event_type" binding:"omitempty,oneof=concert festival tour other"`
}

// FeedItem carries either a place card or an ad, told apart by Kind.
type FeedItem struct {
	Kind  string              `json:"kind"`
	Place *placeDto.PlaceCard `json:"place,omitempty"`
	Ad    *adDto.AdResponse   `json:"ad,omitempty"`
}

type HomeResponse struct {
	Items  []FeedItem               `json:"items"`
	Events []eventDto.EventResponse `json:"events"`
	Meta   commonDto.PaginationMeta `json:"meta"`
}
