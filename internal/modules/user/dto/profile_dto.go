package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpsertProfileInput struct {
	Username string  `form:"username" json:"username" binding:"required,min=3,max=50"`
	Bio      *string `form:"bio" json:"bio" binding:"omitempty,max=500"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
