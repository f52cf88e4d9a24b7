package dto

import (
	"time"

	commonDto "anoa.com/wanderhub/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentInput struct {
	Content string `json:"content" binding:"required,max=1000"`
}

type ListCommentsQuery struct {
	commonDto.Pagination
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	Content   string                   `json:"content"`
	Author    commonDto.AuthorResponse `json:"author"`
	CreatedAt time.Time                `json:"created_at"`
}

type CommentListResponse struct {
	Data []CommentResponse        `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
