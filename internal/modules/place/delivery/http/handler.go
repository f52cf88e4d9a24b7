package handler

import (
	"mime/multipart"
	"net/http"

	placeDto "anoa.com/wanderhub/internal/modules/place/dto"
	placeService "anoa.com/wanderhub/internal/modules/place/service"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type PlaceHandler struct {
	service placeService.PlaceService
}

func NewPlaceHandler(service placeService.PlaceService) *PlaceHandler {
	return &PlaceHandler{service: service}
}

func (h *PlaceHandler) List(c *gin.Context) {
	var q placeDto.ListPlacesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PlaceHandler) Markers(c *gin.Context) {
	markers, err := h.service.Markers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, markers)
}

func (h *PlaceHandler) Get(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	place, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, place)
}

// Create expects multipart/form-data with up to ten "media" files.
func (h *PlaceHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input placeDto.CreatePlaceInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	files, closeFiles, err := formMedia(c)
	defer closeFiles()
	if err != nil {
		response.Error(c, err)
		return
	}

	place, err := h.service.Create(c.Request.Context(), userID, input, files)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, place)
}

func (h *PlaceHandler) Delete(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "place deleted"})
}

func formMedia(c *gin.Context) ([]*commonDto.UploadFile, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, closeAll, nil
	}

	headers := form.File["media"]
	if len(headers) > placeDto.MaxMediaFiles {
		return nil, closeAll, apperror.Wrap(apperror.ErrBadRequest, "at most 10 media files are allowed")
	}

	files := make([]*commonDto.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, apperror.Wrap(apperror.ErrBadRequest, "failed to read media file")
		}
		opened = append(opened, f)
		files = append(files, &commonDto.UploadFile{
			Reader:      f,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return files, closeAll, nil
}
