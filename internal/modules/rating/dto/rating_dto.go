package dto

import "time"

type RateInput struct {
	Rating        int     `json:"rating" binding:"required,min=1,max=5"`
	EmojiReaction *string `json:"emoji_reaction" binding:"omitempty,max=16"`
}

type RatingResponse struct {
	Rating        int       `json:"rating"`
	EmojiReaction *string   `json:"emoji_reaction,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type SummaryResponse struct {
	Average float64         `json:"average"`
	Count   int64           `json:"count"`
	Mine    *RatingResponse `json:"mine,omitempty"`
}
