package handler

import (
	"context"
	"net/http"

	eventDto "anoa.com/wanderhub/internal/modules/event/dto"
	eventService "anoa.com/wanderhub/internal/modules/event/service"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type Importer interface {
	Import(ctx context.Context) (*eventDto.ImportResponse, error)
}

type EventHandler struct {
	service  eventService.EventService
	importer Importer
}

func NewEventHandler(service eventService.EventService, importer Importer) *EventHandler {
	return &EventHandler{service: service, importer: importer}
}

func (h *EventHandler) List(c *gin.Context) {
	var q eventDto.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	events, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, events)
}

func (h *EventHandler) Markers(c *gin.Context) {
	markers, err := h.service.Markers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, markers)
}

func (h *EventHandler) Get(c *gin.Context) {
	id, err := response.ParamUUID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input eventDto.CreateEventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	event, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, event)
}

func (h *EventHandler) Delete(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// Import runs the feed import immediately instead of waiting for the
// scheduled job.
func (h *EventHandler) Import(c *gin.Context) {
	res, err := h.importer.Import(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}
