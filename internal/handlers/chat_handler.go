package handlers

import (
	"net/http"

	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services"
	"campustalk_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	messageService services.MessageService
	readStatus     services.ReadStatusService
	unreadService  services.UnreadService
}

func NewChatHandler(base *BaseHandler, messageService services.MessageService, readStatus services.ReadStatusService, unreadService services.UnreadService) *ChatHandler {
	return &ChatHandler{
		BaseHandler:    base,
		messageService: messageService,
		readStatus:     readStatus,
		unreadService:  unreadService,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	chat.Use(middleware.AuthMiddleware())
	{
		chat.POST("/messages", h.SendMessage)
		chat.DELETE("/messages", h.DeleteMessages)
		chat.GET("/messages/private/:peerId", h.GetPrivateHistory)
		chat.GET("/messages/group/:groupId", h.GetGroupHistory)
		chat.POST("/messages/read", h.MarkAsRead)

		chat.GET("/unread", h.GetUnreadSummary)
		chat.GET("/unread/private", h.GetPrivateUnread)
		chat.GET("/unread/group/:groupId", h.GetGroupUnread)
	}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) DeleteMessages(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.DeleteMessagesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	results := h.messageService.Delete(c.Request.Context(), h.GetDB(c), userID, req.MessageIDs)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (h *ChatHandler) GetPrivateHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	peerID := c.Param("peerId")

	var criteria repositories.MessageCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	history, err := h.messageService.GetPrivateHistory(c.Request.Context(), h.GetDB(c), userID, peerID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) GetGroupHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	groupID := c.Param("groupId")

	var criteria repositories.MessageCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	history, err := h.messageService.GetGroupHistory(c.Request.Context(), h.GetDB(c), userID, groupID, criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.MarkAsReadRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	marked, err := h.readStatus.MarkAsRead(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

func (h *ChatHandler) GetUnreadSummary(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	summary, err := h.unreadService.Summary(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ChatHandler) GetPrivateUnread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.unreadService.PrivateUnread(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *ChatHandler) GetGroupUnread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	count, err := h.unreadService.GroupUnread(c.Request.Context(), h.GetDB(c), userID, c.Param("groupId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
