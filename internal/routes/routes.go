package routes

import (
	"net/http"

	"campustalk_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *handlers.AppHandlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		h.ChatHandler.RegisterRoutes(api)
		h.NotificationHandler.RegisterRoutes(api)
		h.ConfessionHandler.RegisterRoutes(api)
		h.SocialHandler.RegisterRoutes(api)
		h.UploadHandler.RegisterRoutes(api)
		h.WSHandler.RegisterRoutes(api)
	}
}
