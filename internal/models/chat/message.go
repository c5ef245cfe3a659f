package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeVideo MessageType = "video"
	MessageTypeFile  MessageType = "file"
	MessageTypeVoice MessageType = "voice"
)

func ValidMessageType(t MessageType) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeFile, MessageTypeVoice:
		return true
	}
	return false
}

type DeletionReason string

const (
	DeletionBySender    DeletionReason = "sender"
	DeletionByModerator DeletionReason = "moderator"
)

// Message addresses exactly one of ReceiverID (private) or GroupID (group).
// For non-text types Content holds an opaque blob URL.
//
// IsRead is the private-conversation read flag; group read state lives in
// ReadReceipt rows. This asymmetry is intentional: a private message has
// exactly one recipient, so a receipt table would be pure overhead.
type Message struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	SenderID   string  `gorm:"index;not null"`
	ReceiverID *string `gorm:"index"`
	GroupID    *string `gorm:"index"`
	Type       MessageType `gorm:"type:varchar(10);default:'text'"`
	Content    string      `gorm:"type:text"`
	IsRead     bool        `gorm:"default:false"`

	// Soft-deleted rows stay for audit with Content cleared; the rendering
	// layer substitutes a deletion marker.
	Deleted        bool            `gorm:"default:false"`
	DeletionReason *DeletionReason `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"index"`

	Receipts []ReadReceipt `gorm:"foreignKey:MessageID"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsPrivate reports whether the message belongs to a private conversation.
func (m *Message) IsPrivate() bool {
	return m.ReceiverID != nil
}

// AddressingValid enforces the private XOR group invariant.
func (m *Message) AddressingValid() bool {
	return (m.ReceiverID != nil) != (m.GroupID != nil)
}
