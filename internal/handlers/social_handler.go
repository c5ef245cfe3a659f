package handlers

import (
	"net/http"

	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/services"
	"campustalk_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

// SocialHandler covers friendships, groups and presence.
type SocialHandler struct {
	*BaseHandler
	friendshipService services.FriendshipService
	groupService      services.GroupService
	presenceService   services.PresenceService
}

func NewSocialHandler(base *BaseHandler, friendshipService services.FriendshipService, groupService services.GroupService, presenceService services.PresenceService) *SocialHandler {
	return &SocialHandler{
		BaseHandler:       base,
		friendshipService: friendshipService,
		groupService:      groupService,
		presenceService:   presenceService,
	}
}

func (h *SocialHandler) RegisterRoutes(r *gin.RouterGroup) {
	friends := r.Group("/friends")
	friends.Use(middleware.AuthMiddleware())
	{
		friends.POST("/requests", h.SendFriendRequest)
		friends.PUT("/requests/:friendshipId/accept", h.AcceptFriendRequest)
		friends.PUT("/requests/:friendshipId/reject", h.RejectFriendRequest)
	}

	groups := r.Group("/groups")
	groups.Use(middleware.AuthMiddleware())
	{
		groups.POST("", h.CreateGroup)
		groups.GET("/:groupId", h.GetGroup)
		groups.POST("/:groupId/invites", h.InviteToGroup)
		groups.POST("/:groupId/join", h.AcceptGroupInvite)
		groups.DELETE("/:groupId/members/:userId", h.RemoveGroupMember)
	}

	presence := r.Group("/presence")
	presence.Use(middleware.AuthMiddleware())
	{
		presence.POST("/heartbeat", h.Heartbeat)
		presence.PUT("/status", h.SetStatus)
		presence.GET("/:userId", h.GetPresence)
	}
}

// --- Friendship ---

func (h *SocialHandler) SendFriendRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.FriendRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	friendship, err := h.friendshipService.SendRequest(c.Request.Context(), h.GetDB(c), userID, req.AddresseeID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, friendship)
}

func (h *SocialHandler) AcceptFriendRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	friendship, err := h.friendshipService.Accept(c.Request.Context(), h.GetDB(c), userID, c.Param("friendshipId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

func (h *SocialHandler) RejectFriendRequest(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	friendship, err := h.friendshipService.Reject(c.Request.Context(), h.GetDB(c), userID, c.Param("friendshipId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, friendship)
}

// --- Groups ---

func (h *SocialHandler) CreateGroup(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateGroupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	group, err := h.groupService.Create(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *SocialHandler) GetGroup(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	group, err := h.groupService.Get(c.Request.Context(), h.GetDB(c), userID, c.Param("groupId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *SocialHandler) InviteToGroup(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req struct {
		InviteeID string `json:"invitee_id" binding:"required,uuid"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	err := h.groupService.Invite(c.Request.Context(), h.GetDB(c), userID, c.Param("groupId"), req.InviteeID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SocialHandler) AcceptGroupInvite(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	group, err := h.groupService.AcceptInvite(c.Request.Context(), h.GetDB(c), userID, c.Param("groupId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *SocialHandler) RemoveGroupMember(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	err := h.groupService.RemoveMember(c.Request.Context(), h.GetDB(c), userID, c.Param("groupId"), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Presence ---

func (h *SocialHandler) Heartbeat(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.presenceService.Heartbeat(c.Request.Context(), h.GetDB(c), userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SocialHandler) SetStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.presenceService.SetStatus(c.Request.Context(), h.GetDB(c), userID, req.Status); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *SocialHandler) GetPresence(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	presence, err := h.presenceService.GetPresence(c.Request.Context(), h.GetDB(c), c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, presence)
}
