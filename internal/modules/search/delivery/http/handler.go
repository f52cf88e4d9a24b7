package handler

import (
	searchDto "anoa.com/wanderhub/internal/modules/search/dto"
	searchService "anoa.com/wanderhub/internal/modules/search/service"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type SearchHandler struct {
	service searchService.SearchService
}

func NewSearchHandler(service searchService.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search godoc
// GET /api/search?q=
func (h *SearchHandler) Search(c *gin.Context) {
	var q searchDto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Search(c.Request.Context(), q.Q, q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}
