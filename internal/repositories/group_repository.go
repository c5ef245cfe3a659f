package repositories

import (
	"errors"

	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("group member not found")
)

type GroupRepository interface {
	Create(db *gorm.DB, group *models.Group) error
	FindByID(db *gorm.DB, id string) (*models.Group, error)
	AddMember(db *gorm.DB, member *models.GroupMember) error
	FindMember(db *gorm.DB, groupID, userID string) (*models.GroupMember, error)
	FindMemberIDs(db *gorm.DB, groupID string) ([]string, error)
	FindUserGroupIDs(db *gorm.DB, userID string) ([]string, error)
	RemoveMember(db *gorm.DB, groupID, userID string) error
	IsMember(db *gorm.DB, groupID, userID string) (bool, error)
}

type GroupRepositoryImpl struct{}

func NewGroupRepository() GroupRepository {
	return &GroupRepositoryImpl{}
}

func (r *GroupRepositoryImpl) Create(db *gorm.DB, group *models.Group) error {
	return db.Create(group).Error
}

func (r *GroupRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Group, error) {
	var group models.Group
	if err := db.Preload("Members").First(&group, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepositoryImpl) AddMember(db *gorm.DB, member *models.GroupMember) error {
	return db.Create(member).Error
}

func (r *GroupRepositoryImpl) FindMember(db *gorm.DB, groupID, userID string) (*models.GroupMember, error) {
	var member models.GroupMember
	err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindMemberIDs returns the current membership snapshot used for fan-out.
func (r *GroupRepositoryImpl) FindMemberIDs(db *gorm.DB, groupID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *GroupRepositoryImpl) FindUserGroupIDs(db *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := db.Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	return ids, err
}

func (r *GroupRepositoryImpl) RemoveMember(db *gorm.DB, groupID, userID string) error {
	return db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *GroupRepositoryImpl) IsMember(db *gorm.DB, groupID, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
