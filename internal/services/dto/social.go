package dto

import (
	"time"

	"campustalk_backend/internal/models"
)

type FriendshipResponse struct {
	ID          string                  `json:"id"`
	RequesterID string                  `json:"requester_id"`
	AddresseeID string                  `json:"addressee_id"`
	Status      models.FriendshipStatus `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
}

type CreateGroupRequest struct {
	Name      string   `json:"name" binding:"required,min=1,max=100"`
	MemberIDs []string `json:"member_ids" binding:"omitempty,dive,uuid"`
}

type GroupMemberResponse struct {
	UserID   string           `json:"user_id"`
	Role     models.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

type GroupResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	OwnerID   string                 `json:"owner_id"`
	Members   []*GroupMemberResponse `json:"members,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type PresenceResponse struct {
	UserID     string                `json:"user_id"`
	Status     models.PresenceStatus `json:"status"`
	LastSeenAt *time.Time            `json:"last_seen_at,omitempty"`
}

type SetStatusRequest struct {
	Status models.PresenceStatus `json:"status" binding:"required,oneof=online away offline"`
}
