package handler

import (
	feedDto "anoa.com/wanderhub/internal/modules/feed/dto"
	feedService "anoa.com/wanderhub/internal/modules/feed/service"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	service feedService.FeedService
}

func NewFeedHandler(service feedService.FeedService) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) Home(c *gin.Context) {
	var query feedDto.HomeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Home(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}
