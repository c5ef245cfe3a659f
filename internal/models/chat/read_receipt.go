package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadReceipt tracks whether a group member has seen a group message.
// Rows are fanned out in bulk at send time, one per member excluding the
// sender (snapshot semantics: later joiners get no historical receipts).
type ReadReceipt struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	GroupID   string `gorm:"index;not null"`
	MessageID string `gorm:"not null;uniqueIndex:idx_receipt_message_user"`
	UserID    string `gorm:"not null;index;uniqueIndex:idx_receipt_message_user"`
	IsRead    bool   `gorm:"default:false;index"`
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (r *ReadReceipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
