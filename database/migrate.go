package database

import (
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/models/chat"

	"gorm.io/gorm"
)

// Migrate applies the schema for every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Friendship{},
		&models.Group{},
		&models.GroupMember{},
		&models.Notification{},
		&models.Confession{},
		&models.ConfessionLike{},
		&chat.Message{},
		&chat.ReadReceipt{},
	)
}
