package handler

import (
	"net/http"

	statService "anoa.com/wanderhub/internal/modules/stat/service"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService statService.StatService
}

func NewStatHandler(statService statService.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

func (h *StatHandler) GetTotalUsers(c *gin.Context) {
	count, err := h.statService.GetTotalUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_users": count})
}

// GetStats is mounted under the admin group.
func (h *StatHandler) GetStats(c *gin.Context) {
	res, err := h.statService.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}
