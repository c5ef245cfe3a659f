package models

import "time"

type Group struct {
	BaseModel
	Name      string `gorm:"not null"`
	OwnerID   string `gorm:"not null;index"`
	AvatarURL *string

	Members []GroupMember `gorm:"foreignKey:GroupID"`
}

type GroupRole string

const (
	GroupRoleOwner  GroupRole = "owner"
	GroupRoleAdmin  GroupRole = "admin"
	GroupRoleMember GroupRole = "member"
)

type GroupMember struct {
	BaseModel
	GroupID  string    `gorm:"not null;index;uniqueIndex:idx_group_member"`
	UserID   string    `gorm:"not null;index;uniqueIndex:idx_group_member"`
	Role     GroupRole `gorm:"type:varchar(20);default:'member'"`
	JoinedAt time.Time
}

// IsModerator reports whether the member can act on other members' messages.
func (m *GroupMember) IsModerator() bool {
	return m.Role == GroupRoleOwner || m.Role == GroupRoleAdmin
}
