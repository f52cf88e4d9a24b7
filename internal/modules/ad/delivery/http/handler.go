package handler

import (
	"net/http"

	"anoa.com/wanderhub/internal/entity"
	adDto "anoa.com/wanderhub/internal/modules/ad/dto"
	adService "anoa.com/wanderhub/internal/modules/ad/service"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/hashid"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

var detailPositions = map[string]bool{
	entity.AdPositionPlaceDetail: true,
	entity.AdPositionEventDetail: true,
	entity.AdPositionProfile:     true,
	entity.AdPositionHomeFeed:    true,
}

type AdHandler struct {
	service adService.AdService
	codec   *hashid.Codec
}

func NewAdHandler(service adService.AdService, codec *hashid.Codec) *AdHandler {
	return &AdHandler{service: service, codec: codec}
}

func (h *AdHandler) adID(c *gin.Context) (int64, error) {
	id, err := h.codec.Decode(c.Param("hid"))
	if err != nil {
		return 0, apperror.Wrap(apperror.ErrNotFound, "ad not found")
	}
	return id, nil
}

func (h *AdHandler) SelectActive(c *gin.Context) {
	var q adDto.SelectAdsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	ads := h.service.SelectActiveAds(c.Request.Context(), q.Position, q.Type)
	out := make([]adDto.AdResponse, 0, len(ads))
	for _, ad := range ads {
		out = append(out, h.service.ToResponse(ad))
	}
	response.OK(c, out)
}

// PickForDetail returns one ad for a detail page, or null when none serve.
func (h *AdHandler) PickForDetail(c *gin.Context) {
	position := c.Param("position")
	if !detailPositions[position] {
		response.Error(c, apperror.Wrap(apperror.ErrBadRequest, "unknown ad position"))
		return
	}

	ad := h.service.PickForDetail(c.Request.Context(), position)
	if ad == nil {
		response.OK(c, nil)
		return
	}
	response.OK(c, h.service.ToResponse(*ad))
}

func (h *AdHandler) Click(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	link, err := h.service.RecordClick(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, adDto.ClickResponse{LinkURL: link})
}

func (h *AdHandler) Impression(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.RecordImpression(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Admin endpoints

func (h *AdHandler) List(c *gin.Context) {
	ads, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ads)
}

func (h *AdHandler) Get(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	ad, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ad)
}

func (h *AdHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input adDto.AdInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	image, closeFn, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	ad, err := h.service.Create(c.Request.Context(), userID, input, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ad)
}

func (h *AdHandler) Update(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input adDto.AdInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	image, closeFn, err := formImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeFn()

	ad, err := h.service.Update(c.Request.Context(), id, input, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ad)
}

func (h *AdHandler) Delete(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ad deleted"})
}

func (h *AdHandler) SetActive(c *gin.Context) {
	id, err := h.adID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input adDto.ToggleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.SetActive(c.Request.Context(), id, input.Active); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": input.Active})
}

func (h *AdHandler) Analytics(c *gin.Context) {
	a, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, a)
}

func (h *AdHandler) Flush(c *gin.Context) {
	n, err := h.service.FlushCounters(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flushed": n})
}

func formImage(c *gin.Context) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile("image")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, apperror.Wrap(apperror.ErrBadRequest, "failed to read image")
	}

	return &commonDto.UploadFile{
		Reader:      file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, func() { _ = file.Close() }, nil
}
