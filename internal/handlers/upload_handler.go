package handlers

import (
	"net/http"

	"campustalk_backend/internal/middleware"
	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/services"
	"campustalk_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 50 << 20

type UploadHandler struct {
	*BaseHandler
	attachmentService services.AttachmentService
}

func NewUploadHandler(base *BaseHandler, attachmentService services.AttachmentService) *UploadHandler {
	return &UploadHandler{
		BaseHandler:       base,
		attachmentService: attachmentService,
	}
}

func (h *UploadHandler) RegisterRoutes(r *gin.RouterGroup) {
	uploads := r.Group("/uploads")
	uploads.Use(middleware.AuthMiddleware())
	{
		uploads.POST("", h.UploadAttachment)
	}
}

// UploadAttachment stores a blob for a non-text message. The returned URL
// goes into the message content on send.
func (h *UploadHandler) UploadAttachment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to parse form: "+err.Error()))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("file field is required"))
		return
	}
	defer file.Close()

	messageType := chat.MessageType(c.PostForm("type"))
	if messageType == "" {
		messageType = chat.MessageTypeFile
	}

	url, err := h.attachmentService.Upload(
		c.Request.Context(),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		messageType,
		file,
	)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
