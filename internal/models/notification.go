package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationFriendRequest     NotificationType = "friend_request"
	NotificationFriendRequestSent NotificationType = "friend_request_sent"
	NotificationFriendAccepted    NotificationType = "friend_accepted"
	NotificationFriendRejected    NotificationType = "friend_rejected"
	NotificationGroupInvite       NotificationType = "group_invite"
)

// Notification content is denormalized from the sender's display name at
// creation time; later name changes do not rewrite old rows.
type Notification struct {
	BaseModel
	RecipientID     string           `gorm:"not null;index"`
	SenderID        string           `gorm:"index"`
	Type            NotificationType `gorm:"type:varchar(30);not null"`
	Content         string           `gorm:"not null"`
	RelatedEntityID string           `gorm:"index"`
	Data            datatypes.JSON
	ReadStatus      bool `gorm:"default:false;index"`
	ReadAt          *time.Time
}
