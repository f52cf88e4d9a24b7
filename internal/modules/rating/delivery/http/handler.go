package handler

import (
	"net/http"

	"anoa.com/wanderhub/internal/entity"
	ratingDto "anoa.com/wanderhub/internal/modules/rating/dto"
	ratingService "anoa.com/wanderhub/internal/modules/rating/service"
	"anoa.com/wanderhub/pkg/apperror"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	service ratingService.RatingService
}

func NewRatingHandler(service ratingService.RatingService) *RatingHandler {
	return &RatingHandler{service: service}
}

func paramTarget(c *gin.Context) (entity.Target, error) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		return entity.Target{}, err
	}
	target, ok := entity.NewTarget(c.Param("kind"), id)
	if !ok {
		return entity.Target{}, apperror.Wrap(apperror.ErrNotFound, "unknown rating target")
	}
	return target, nil
}

func (h *RatingHandler) Rate(c *gin.Context) {
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

	var input ratingDto.RateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Rate(c.Request.Context(), userID, target, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

func (h *RatingHandler) Summary(c *gin.Context) {
	target, err := paramTarget(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Summary(c.Request.Context(), response.OptionalUserID(c), target)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

func (h *RatingHandler) Remove(c *gin.Context) {
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

	if err := h.service.Remove(c.Request.Context(), userID, target); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
