package handler

import (
	"net/http"

	notifDto "anoa.com/wanderhub/internal/modules/notification/dto"
	notifService "anoa.com/wanderhub/internal/modules/notification/service"
	"anoa.com/wanderhub/pkg/realtime"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	service  notifService.NotificationService
	pubsub   realtime.PubSub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewNotificationHandler(service notifService.NotificationService, pubsub realtime.PubSub, upgrader websocket.Upgrader, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{
		service:  service,
		pubsub:   pubsub,
		upgrader: upgrader,
		log:      log,
	}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q notifDto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	notifications, err := h.service.GetNotifications(c.Request.Context(), userID, q.Limit, q.Offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, notifications)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
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

	if err := h.service.MarkAsRead(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.MarkAllAsRead(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// HandleWebSocket streams the caller's notifications as they are created.
func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	sub, err := h.pubsub.Subscribe(c.Request.Context(), notifService.Channel(userID))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("failed to upgrade websocket", "user_id", userID, "error", err)
		return
	}
	defer conn.Close()

	if err := realtime.Forward(c.Request.Context(), conn, sub, nil); err != nil {
		h.log.Debugw("notification stream closed", "user_id", userID, "error", err)
	}
}
