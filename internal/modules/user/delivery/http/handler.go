package handler

import (
	userDto "anoa.com/wanderhub/internal/modules/user/dto"
	userService "anoa.com/wanderhub/internal/modules/user/service"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	service userService.ProfileService
}

func NewProfileHandler(service userService.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) GetCurrentProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *ProfileHandler) UpsertProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input userDto.UpsertProfileInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	var avatar *commonDto.UploadFile
	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, err)
			return
		}
		defer file.Close()

		avatar = &commonDto.UploadFile{
			Reader:      file,
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
		}
	}

	profile, err := h.service.UpsertProfile(c.Request.Context(), userID, input, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}
