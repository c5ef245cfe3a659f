package repositories

import (
	"time"

	"campustalk_backend/internal/models/chat"

	"gorm.io/gorm"
)

type ReadReceiptRepository interface {
	CreateMany(db *gorm.DB, receipts []chat.ReadReceipt) error
	MarkRead(db *gorm.DB, groupID, userID string, messageIDs []string, readAt time.Time) (int64, error)
	CountUnread(db *gorm.DB, groupID, userID string) (int64, error)
	FindByMessage(db *gorm.DB, messageID string) ([]chat.ReadReceipt, error)
	DeleteByMessage(db *gorm.DB, messageID string) error
	DeleteByGroupAndUser(db *gorm.DB, groupID, userID string) error
}

type ReadReceiptRepositoryImpl struct{}

func NewReadReceiptRepository() ReadReceiptRepository {
	return &ReadReceiptRepositoryImpl{}
}

// CreateMany is the send-time fan-out bulk insert.
func (r *ReadReceiptRepositoryImpl) CreateMany(db *gorm.DB, receipts []chat.ReadReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	return db.Create(&receipts).Error
}

// MarkRead marks the given receipts (or, with messageIDs empty, all unread
// receipts for the user in the group). Only unread rows are touched, so
// repeating the call is a no-op.
func (r *ReadReceiptRepositoryImpl) MarkRead(db *gorm.DB, groupID, userID string, messageIDs []string, readAt time.Time) (int64, error) {
	query := db.Model(&chat.ReadReceipt{}).
		Where("group_id = ? AND user_id = ? AND is_read = ?", groupID, userID, false)
	if len(messageIDs) > 0 {
		query = query.Where("message_id IN ?", messageIDs)
	}
	result := query.Updates(map[string]interface{}{"is_read": true, "read_at": readAt})
	return result.RowsAffected, result.Error
}

func (r *ReadReceiptRepositoryImpl) CountUnread(db *gorm.DB, groupID, userID string) (int64, error) {
	var count int64
	err := db.Model(&chat.ReadReceipt{}).
		Where("group_id = ? AND user_id = ? AND is_read = ?", groupID, userID, false).
		Count(&count).Error
	return count, err
}

func (r *ReadReceiptRepositoryImpl) FindByMessage(db *gorm.DB, messageID string) ([]chat.ReadReceipt, error) {
	var receipts []chat.ReadReceipt
	err := db.Where("message_id = ?", messageID).Find(&receipts).Error
	return receipts, err
}

// DeleteByMessage is the hard-delete cascade.
func (r *ReadReceiptRepositoryImpl) DeleteByMessage(db *gorm.DB, messageID string) error {
	return db.Where("message_id = ?", messageID).Delete(&chat.ReadReceipt{}).Error
}

// DeleteByGroupAndUser purges a removed member's receipts.
func (r *ReadReceiptRepositoryImpl) DeleteByGroupAndUser(db *gorm.DB, groupID, userID string) error {
	return db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&chat.ReadReceipt{}).Error
}
