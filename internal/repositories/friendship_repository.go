package repositories

import (
	"errors"

	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

var ErrFriendshipNotFound = errors.New("friendship not found")

type FriendshipRepository interface {
	Create(db *gorm.DB, friendship *models.Friendship) error
	FindBetween(db *gorm.DB, userA, userB string) (*models.Friendship, error)
	FindByID(db *gorm.DB, id string) (*models.Friendship, error)
	UpdateStatus(db *gorm.DB, id string, status models.FriendshipStatus) error
	AreFriends(db *gorm.DB, userA, userB string) (bool, error)
}

type FriendshipRepositoryImpl struct{}

func NewFriendshipRepository() FriendshipRepository {
	return &FriendshipRepositoryImpl{}
}

func (r *FriendshipRepositoryImpl) Create(db *gorm.DB, friendship *models.Friendship) error {
	return db.Create(friendship).Error
}

// FindBetween looks up the friendship in either direction.
func (r *FriendshipRepositoryImpl) FindBetween(db *gorm.DB, userA, userB string) (*models.Friendship, error) {
	var friendship models.Friendship
	err := db.Where(
		"(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
		userA, userB, userB, userA,
	).First(&friendship).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, err
	}
	return &friendship, nil
}

func (r *FriendshipRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Friendship, error) {
	var friendship models.Friendship
	if err := db.First(&friendship, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFriendshipNotFound
		}
		return nil, err
	}
	return &friendship, nil
}

func (r *FriendshipRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.FriendshipStatus) error {
	return db.Model(&models.Friendship{}).Where("id = ?", id).Update("status", status).Error
}

func (r *FriendshipRepositoryImpl) AreFriends(db *gorm.DB, userA, userB string) (bool, error) {
	var count int64
	err := db.Model(&models.Friendship{}).
		Where(
			"status = ? AND ((requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?))",
			models.FriendshipAccepted, userA, userB, userB, userA,
		).
		Count(&count).Error
	return count > 0, err
}
