package handlers

import (
	"net/http"

	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ConfessionHandler struct {
	*BaseHandler
	likeService services.LikeService
}

func NewConfessionHandler(base *BaseHandler, likeService services.LikeService) *ConfessionHandler {
	return &ConfessionHandler{
		BaseHandler: base,
		likeService: likeService,
	}
}

func (h *ConfessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	confessions := r.Group("/confessions")
	confessions.Use(middleware.AuthMiddleware())
	{
		confessions.POST("", h.CreateConfession)
		confessions.GET("", h.ListConfessions)
		confessions.GET("/:confessionId", h.GetConfession)
		confessions.POST("/:confessionId/like", h.ToggleLike)
	}
}

func (h *ConfessionHandler) CreateConfession(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required,min=1,max=2000"`
	}
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	confession, err := h.likeService.CreateConfession(c.Request.Context(), h.GetDB(c), userID, req.Content)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confession)
}

func (h *ConfessionHandler) ListConfessions(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	list, err := h.likeService.ListConfessions(c.Request.Context(), h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ConfessionHandler) GetConfession(c *gin.Context) {
	if _, ok := h.GetAndAuthorizeUserID(c); !ok {
		return
	}

	confession, err := h.likeService.GetConfession(c.Request.Context(), h.GetDB(c), c.Param("confessionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, confession)
}

func (h *ConfessionHandler) ToggleLike(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	result, err := h.likeService.ToggleLike(c.Request.Context(), h.GetDB(c), userID, c.Param("confessionId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
