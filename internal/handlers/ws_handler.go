package handlers

import (
	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/services"
	"campustalk_backend/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type WSHandler struct {
	*BaseHandler
	manager    *ws.Manager
	db         *gorm.DB
	readStatus services.ReadStatusService
	presence   services.PresenceService
}

func NewWSHandler(base *BaseHandler, manager *ws.Manager, db *gorm.DB, readStatus services.ReadStatusService, presence services.PresenceService) *WSHandler {
	return &WSHandler{
		BaseHandler: base,
		manager:     manager,
		db:          db,
		readStatus:  readStatus,
		presence:    presence,
	}
}

func (h *WSHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws", middleware.AuthMiddleware(), h.HandleWebSocket)
}

func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	ws.ServeWS(h.manager, c.Writer, c.Request, userID, h.db, h.readStatus, h.presence)
}
