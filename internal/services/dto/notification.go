package dto

import (
	"time"

	"campustalk_backend/internal/models"
)

type NotificationResponse struct {
	ID              string                  `json:"id"`
	RecipientID     string                  `json:"recipient_id"`
	SenderID        string                  `json:"sender_id"`
	Type            models.NotificationType `json:"type"`
	Content         string                  `json:"content"`
	RelatedEntityID string                  `json:"related_entity_id,omitempty"`
	ReadStatus      bool                    `json:"read_status"`
	CreatedAt       time.Time               `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []*NotificationResponse `json:"notifications"`
	Total         int64                   `json:"total"`
	UnreadCount   int64                   `json:"unread_count"`
}

type FriendRequestRequest struct {
	AddresseeID string `json:"addressee_id" binding:"required,uuid"`
}

type GroupInviteRequest struct {
	GroupID   string `json:"group_id" binding:"required,uuid"`
	InviteeID string `json:"invitee_id" binding:"required,uuid"`
}
