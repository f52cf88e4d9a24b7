package handler

import (
	msgDto "anoa.com/wanderhub/internal/modules/message/dto"
	msgService "anoa.com/wanderhub/internal/modules/message/service"
	"anoa.com/wanderhub/pkg/apperror"
	commonDto "anoa.com/wanderhub/pkg/dto"
	"anoa.com/wanderhub/pkg/realtime"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type MessageHandler struct {
	service  msgService.MessageService
	pubsub   realtime.PubSub
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func NewMessageHandler(service msgService.MessageService, pubsub realtime.PubSub, upgrader websocket.Upgrader, log *zap.SugaredLogger) *MessageHandler {
	return &MessageHandler{
		service:  service,
		pubsub:   pubsub,
		upgrader: upgrader,
		log:      log,
	}
}

func (h *MessageHandler) ListChats(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	chats, err := h.service.ListChats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, chats)
}

func (h *MessageHandler) ListConversation(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	friendID, err := response.ParamUUID(c, "friend_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	messages, err := h.service.ListConversation(c.Request.Context(), userID, friendID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, messages)
}

// SendMessage accepts JSON or multipart; an optional "media" file is
// attached to the message.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	friendID, err := response.ParamUUID(c, "friend_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input msgDto.SendMessageInput
	if err := c.ShouldBind(&input); err != nil {
		response.BindError(c, err)
		return
	}

	media, closeMedia, err := formMedia(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeMedia()

	msg, err := h.service.SendMessage(c.Request.Context(), userID, friendID, input, media)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, msg)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	friendID, err := response.ParamUUID(c, "friend_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	n, err := h.service.MarkRead(c.Request.Context(), userID, friendID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, msgDto.MarkReadResponse{Updated: n})
}

// HandleWebSocket pushes a reload event for every message inserted into
// the conversation with friend_id. Clients re-fetch the conversation.
func (h *MessageHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	friendID, err := response.ParamUUID(c, "friend_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.CanChat(ctx, userID, friendID); err != nil {
		response.Error(c, err)
		return
	}

	sub, err := h.pubsub.Subscribe(ctx, msgService.ConversationChannel(userID, friendID))
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

	if err := realtime.Forward(ctx, conn, sub, nil); err != nil {
		h.log.Debugw("conversation stream closed", "user_id", userID, "friend_id", friendID, "error", err)
	}
}

func formMedia(c *gin.Context) (*commonDto.UploadFile, func(), error) {
	fileHeader, err := c.FormFile("media")
	if err != nil || fileHeader == nil {
		return nil, func() {}, nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, func() {}, apperror.Wrap(apperror.ErrBadRequest, "failed to read attachment")
	}

	return &commonDto.UploadFile{
		Reader:      file,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, func() { _ = file.Close() }, nil
}

