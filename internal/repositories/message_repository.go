package repositories

import (
	"errors"
	"time"

	"campustalk_backend/internal/models/chat"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageCriteria filters message history queries.
type MessageCriteria struct {
	BeforeID  string    `form:"before_id"`
	Limit     int       `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset    int       `form:"offset"`
	StartDate time.Time `form:"start_date"`
	EndDate   time.Time `form:"end_date"`
}

type MessageRepository interface {
	Create(db *gorm.DB, message *chat.Message) error
	FindByID(db *gorm.DB, id string) (*chat.Message, error)
	FindByIDs(db *gorm.DB, ids []string) ([]chat.Message, error)
	FindPrivateMessages(db *gorm.DB, userA, userB string, criteria MessageCriteria) ([]chat.Message, int64, error)
	FindGroupMessages(db *gorm.DB, groupID string, criteria MessageCriteria) ([]chat.Message, int64, error)
	HardDelete(db *gorm.DB, id string) error
	SoftDelete(db *gorm.DB, id string, reason chat.DeletionReason) error
	MarkPrivateRead(db *gorm.DB, receiverID, senderID string, messageIDs []string) (int64, error)
	CountPrivateUnread(db *gorm.DB, userID string) (int64, error)
	CountPrivateUnreadFrom(db *gorm.DB, receiverID, senderID string) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, message *chat.Message) error {
	return db.Create(message).Error
}

func (r *MessageRepositoryImpl) FindByID(db *gorm.DB, id string) (*chat.Message, error) {
	var message chat.Message
	if err := db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]chat.Message, error) {
	var messages []chat.Message
	err := db.Where("id IN ?", ids).Find(&messages).Error
	return messages, err
}

func (r *MessageRepositoryImpl) FindPrivateMessages(db *gorm.DB, userA, userB string, criteria MessageCriteria) ([]chat.Message, int64, error) {
	query := db.Model(&chat.Message{}).Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userA, userB, userB, userA,
	)
	return findMessages(query, criteria)
}

func (r *MessageRepositoryImpl) FindGroupMessages(db *gorm.DB, groupID string, criteria MessageCriteria) ([]chat.Message, int64, error) {
	query := db.Model(&chat.Message{}).Where("group_id = ?", groupID)
	return findMessages(query, criteria)
}

func findMessages(query *gorm.DB, criteria MessageCriteria) ([]chat.Message, int64, error) {
	if !criteria.StartDate.IsZero() {
		query = query.Where("created_at >= ?", criteria.StartDate)
	}
	if !criteria.EndDate.IsZero() {
		query = query.Where("created_at <= ?", criteria.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = 50
	}

	var messages []chat.Message
	err := query.
		Order("created_at ASC").
		Offset(criteria.Offset).
		Limit(limit).
		Find(&messages).Error
	return messages, total, err
}

func (r *MessageRepositoryImpl) HardDelete(db *gorm.DB, id string) error {
	return db.Where("id = ?", id).Delete(&chat.Message{}).Error
}

// SoftDelete keeps the row for audit: content is cleared, the deleted flag
// and reason are set. Receipts are retained.
func (r *MessageRepositoryImpl) SoftDelete(db *gorm.DB, id string, reason chat.DeletionReason) error {
	return db.Model(&chat.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":         "",
			"deleted":         true,
			"deletion_reason": reason,
		}).Error
}

// MarkPrivateRead flips the read flag on private messages addressed to
// receiverID. With messageIDs empty, every unread message from senderID is
// marked. Already-read rows are untouched, which makes the call idempotent.
func (r *MessageRepositoryImpl) MarkPrivateRead(db *gorm.DB, receiverID, senderID string, messageIDs []string) (int64, error) {
	query := db.Model(&chat.Message{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false)
	if len(messageIDs) > 0 {
		query = query.Where("id IN ?", messageIDs)
	} else {
		query = query.Where("sender_id = ?", senderID)
	}
	result := query.Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *MessageRepositoryImpl) CountPrivateUnread(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&chat.Message{}).
		Where("receiver_id = ? AND is_read = ? AND deleted = ?", userID, false, false).
		Count(&count).Error
	return count, err
}

func (r *MessageRepositoryImpl) CountPrivateUnreadFrom(db *gorm.DB, receiverID, senderID string) (int64, error) {
	var count int64
	err := db.Model(&chat.Message{}).
		Where("receiver_id = ? AND sender_id = ? AND is_read = ? AND deleted = ?", receiverID, senderID, false, false).
		Count(&count).Error
	return count, err
}
