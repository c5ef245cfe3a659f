package handlers

// AppHandlers holds every handler the router registers.
type AppHandlers struct {
	ChatHandler         *ChatHandler
	NotificationHandler *NotificationHandler
	ConfessionHandler   *ConfessionHandler
	SocialHandler       *SocialHandler
	UploadHandler       *UploadHandler
	WSHandler           *WSHandler
}
