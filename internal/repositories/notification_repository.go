package repositories

import (
	"errors"
	"time"

	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationCriteria filters notification listing.
type NotificationCriteria struct {
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type NotificationRepository interface {
	Create(db *gorm.DB, notification *models.Notification) error
	FindByID(db *gorm.DB, id string) (*models.Notification, error)
	FindUserNotifications(db *gorm.DB, recipientID string, criteria NotificationCriteria) ([]models.Notification, int64, error)
	FindPendingDuplicate(db *gorm.DB, recipientID, senderID string, typ models.NotificationType) (*models.Notification, error)
	MarkAsRead(db *gorm.DB, id string, readAt time.Time) error
	MarkAllAsRead(db *gorm.DB, recipientID string, readAt time.Time) error
	GetUnreadCount(db *gorm.DB, recipientID string) (int64, error)
	DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error)
}

type NotificationRepositoryImpl struct{}

func NewNotificationRepository() NotificationRepository {
	return &NotificationRepositoryImpl{}
}

func (r *NotificationRepositoryImpl) Create(db *gorm.DB, notification *models.Notification) error {
	return db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Notification, error) {
	var notification models.Notification
	if err := db.First(&notification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) FindUserNotifications(db *gorm.DB, recipientID string, criteria NotificationCriteria) ([]models.Notification, int64, error) {
	query := db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID)
	if criteria.UnreadOnly {
		query = query.Where("read_status = ?", false)
	}
	if criteria.Type != "" {
		query = query.Where("type = ?", criteria.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := criteria.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := criteria.Page
	if page <= 0 {
		page = 1
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	return notifications, total, err
}

// FindPendingDuplicate looks for an existing unread notification from the
// same sender and type, used to resolve duplicate friend requests as
// idempotent success.
func (r *NotificationRepositoryImpl) FindPendingDuplicate(db *gorm.DB, recipientID, senderID string, typ models.NotificationType) (*models.Notification, error) {
	var notification models.Notification
	err := db.Where(
		"recipient_id = ? AND sender_id = ? AND type = ? AND read_status = ?",
		recipientID, senderID, typ, false,
	).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) MarkAsRead(db *gorm.DB, id string, readAt time.Time) error {
	return db.Model(&models.Notification{}).
		Where("id = ? AND read_status = ?", id, false).
		Updates(map[string]interface{}{"read_status": true, "read_at": readAt}).Error
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(db *gorm.DB, recipientID string, readAt time.Time) error {
	return db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_status = ?", recipientID, false).
		Updates(map[string]interface{}{"read_status": true, "read_at": readAt}).Error
}

func (r *NotificationRepositoryImpl) GetUnreadCount(db *gorm.DB, recipientID string) (int64, error) {
	var count int64
	err := db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_status = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepositoryImpl) DeleteReadOlderThan(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("read_status = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
