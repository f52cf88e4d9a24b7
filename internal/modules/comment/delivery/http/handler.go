package handler

import (
	"net/http"

	"anoa.com/wanderhub/internal/entity"
	commentDto "anoa.com/wanderhub/internal/modules/comment/dto"
	commentService "anoa.com/wanderhub/internal/modules/comment/service"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service commentService.CommentService
}

func NewCommentHandler(service commentService.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func paramTarget(c *gin.Context) (entity.Target, error) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		return entity.Target{}, err
	}
	target, ok := entity.NewTarget(c.Param("kind"), id)
	if !ok {
		return entity.Target{}, apperror.Wrap(apperror.ErrNotFound, "unknown comment target")
	}
	return target, nil
}

func (h *CommentHandler) List(c *gin.Context) {
	target, err := paramTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var query commentDto.ListCommentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), target, query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *CommentHandler) Create(c *gin.Context) {
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

	var input commentDto.CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Create(c.Request.Context(), userID, target, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, response.IsStaff(c), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
