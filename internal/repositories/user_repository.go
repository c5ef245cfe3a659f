package repositories

import (
	"errors"
	"time"

	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByIDs(db *gorm.DB, ids []string) ([]models.User, error)
	UpdatePresence(db *gorm.DB, userID string, status models.PresenceStatus, lastSeen time.Time) error
	TouchLastSeen(db *gorm.DB, userID string, lastSeen time.Time) error
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	return db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) ([]models.User, error) {
	var users []models.User
	err := db.Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// UpdatePresence sets both the explicit status and the heartbeat timestamp.
func (r *UserRepositoryImpl) UpdatePresence(db *gorm.DB, userID string, status models.PresenceStatus, lastSeen time.Time) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"status": status, "last_seen_at": lastSeen}).Error
}

// TouchLastSeen refreshes only the heartbeat; the explicit status is left alone.
func (r *UserRepositoryImpl) TouchLastSeen(db *gorm.DB, userID string, lastSeen time.Time) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", lastSeen).Error
}
