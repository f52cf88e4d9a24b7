package dto

import (
	"time"

	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
)

type SendRequestInput struct {
	FriendID string `json:"friend_id" binding:"required,uuid"`
}

type SearchQuery struct {
	Q string `form:"q" binding:"required,min=1,max=50"`
}

type FriendResponse struct {
	commonDto.AuthorResponse
	Since time.Time `json:"since"`
}

type RequestResponse struct {
	ID        uuid.UUID                `json:"id"`
	From      commonDto.AuthorResponse `json:"from"`
	To        commonDto.AuthorResponse `json:"to"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

type UserSearchResult struct {
	commonDto.AuthorResponse
	RequestSent     bool `json:"request_sent"`
	RequestReceived bool `json:"request_received"`
}
