package repositories

import (
	"errors"

	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

var ErrConfessionNotFound = errors.New("confession not found")

type ConfessionRepository interface {
	Create(db *gorm.DB, confession *models.Confession) error
	FindByID(db *gorm.DB, id string) (*models.Confession, error)
	List(db *gorm.DB, page, pageSize int) ([]models.Confession, int64, error)

	// Like operations
	LikeExists(db *gorm.DB, confessionID, userID string) (bool, error)
	CreateLike(db *gorm.DB, like *models.ConfessionLike) error
	DeleteLike(db *gorm.DB, confessionID, userID string) (int64, error)
	CountLikes(db *gorm.DB, confessionID string) (int64, error)
}

type ConfessionRepositoryImpl struct{}

func NewConfessionRepository() ConfessionRepository {
	return &ConfessionRepositoryImpl{}
}

func (r *ConfessionRepositoryImpl) Create(db *gorm.DB, confession *models.Confession) error {
	return db.Create(confession).Error
}

func (r *ConfessionRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Confession, error) {
	var confession models.Confession
	if err := db.First(&confession, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfessionNotFound
		}
		return nil, err
	}
	return &confession, nil
}

func (r *ConfessionRepositoryImpl) List(db *gorm.DB, page, pageSize int) ([]models.Confession, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := db.Model(&models.Confession{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var confessions []models.Confession
	err := db.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&confessions).Error
	return confessions, total, err
}

func (r *ConfessionRepositoryImpl) LikeExists(db *gorm.DB, confessionID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.ConfessionLike{}).
		Where("confession_id = ? AND user_id = ?", confessionID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ConfessionRepositoryImpl) CreateLike(db *gorm.DB, like *models.ConfessionLike) error {
	return db.Create(like).Error
}

// DeleteLike returns the number of removed rows so the caller can tell a
// real unlike from a race that already removed the row.
func (r *ConfessionRepositoryImpl) DeleteLike(db *gorm.DB, confessionID, userID string) (int64, error) {
	result := db.Where("confession_id = ? AND user_id = ?", confessionID, userID).
		Delete(&models.ConfessionLike{})
	return result.RowsAffected, result.Error
}

func (r *ConfessionRepositoryImpl) CountLikes(db *gorm.DB, confessionID string) (int64, error) {
	var count int64
	err := db.Model(&models.ConfessionLike{}).
		Where("confession_id = ?", confessionID).
		Count(&count).Error
	return count, err
}
