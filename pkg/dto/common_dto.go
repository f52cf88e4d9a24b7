package dto

import (
	"io"

	"github.com/google/uuid"
)

type AuthorResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
}

// UploadFile is a multipart file handed from a handler to a service.
type UploadFile struct {
	Reader      io.Reader
	FileName    string
	ContentType string
}

type Pagination struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=20" binding:"min=1,max=50"`
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

type PaginationMeta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

func NewPaginationMeta(p Pagination, total int64) PaginationMeta {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationMeta{CurrentPage: p.Page, TotalPages: pages, TotalItems: total, Limit: p.Limit}
}
