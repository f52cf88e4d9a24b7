package handler

import (
	"anoa.com/wanderhub/internal/entity"
	likeService "anoa.com/wanderhub/internal/modules/like/service"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type LikeHandler struct {
	service likeService.LikeService
}

func NewLikeHandler(service likeService.LikeService) *LikeHandler {
	return &LikeHandler{service: service}
}

// paramTarget reads /:kind/:id where kind is place, event or comment.
func paramTarget(c *gin.Context) (entity.Target, error) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		return entity.Target{}, err
	}
	target, ok := entity.NewTarget(c.Param("kind"), id)
	if !ok {
		return entity.Target{}, apperror.Wrap(apperror.ErrNotFound, "unknown like target")
	}
	return target, nil
}

func (h *LikeHandler) Toggle(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	target, err := paramTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Toggle(c.Request.Context(), userID, target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

func (h *LikeHandler) Status(c *gin.Context) {
	target, err := paramTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Status(c.Request.Context(), response.OptionalUserID(c), target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}
