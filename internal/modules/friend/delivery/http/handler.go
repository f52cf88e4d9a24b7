package handler

import (
	"net/http"

	friendDto "anoa.com/wanderhub/internal/modules/friend/dto"
	friendService "anoa.com/wanderhub/internal/modules/friend/service"
	"anoa.com/wanderhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendHandler struct {
	service friendService.FriendService
}

func NewFriendHandler(service friendService.FriendService) *FriendHandler {
	return &FriendHandler{service: service}
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	friends, err := h.service.ListFriends(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, friends)
}

func (h *FriendHandler) ListPending(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	requests, err := h.service.ListPending(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, requests)
}

func (h *FriendHandler) ListOutgoing(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	requests, err := h.service.ListOutgoing(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, requests)
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input friendDto.SendRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.SendRequest(c.Request.Context(), userID, uuid.MustParse(input.FriendID))
	if err != nil {
		response.Error(c, err)
		return
	}

	if res.Status == "accepted" {
		response.OK(c, res)
		return
	}
	response.Created(c, res)
}

func (h *FriendHandler) AcceptRequest(c *gin.Context) {
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

	res, err := h.service.AcceptRequest(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

func (h *FriendHandler) RejectRequest(c *gin.Context) {
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

	if err := h.service.RejectRequest(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "friend request removed"})
}

func (h *FriendHandler) RemoveFriend(c *gin.Context) {
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

	if err := h.service.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}

func (h *FriendHandler) SearchUsers(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var q friendDto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	users, err := h.service.SearchUsers(c.Request.Context(), userID, q.Q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, users)
}
