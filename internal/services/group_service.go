package services

import (
	"context"
	"errors"
	"time"

	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type GroupService interface {
	Create(ctx context.Context, db *gorm.DB, ownerID string, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	Get(ctx context.Context, db *gorm.DB, userID, groupID string) (*dto.GroupResponse, error)

	// Invite notifies the invitee; membership is granted on AcceptInvite.
	Invite(ctx context.Context, db *gorm.DB, inviterID, groupID, inviteeID string) error
	AcceptInvite(ctx context.Context, db *gorm.DB, userID, groupID string) (*dto.GroupResponse, error)

	// RemoveMember removes userID from the group. Moderators can remove
	// anyone but the owner; any member can remove themselves. The removed
	// member's receipts are purged so stale rows never count as unread.
	RemoveMember(ctx context.Context, db *gorm.DB, actorID, groupID, userID string) error
}

type groupService struct {
	groupRepo     repositories.GroupRepository
	userRepo      repositories.UserRepository
	readStatus    ReadStatusService
	notifications NotificationService
	cache         *cache.Cache
	bus           *realtime.Bus
}

func NewGroupService(
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	readStatus ReadStatusService,
	notifications NotificationService,
	c *cache.Cache,
	bus *realtime.Bus,
) GroupService {
	return &groupService{
		groupRepo:     groupRepo,
		userRepo:      userRepo,
		readStatus:    readStatus,
		notifications: notifications,
		cache:         c,
		bus:           bus,
	}
}

func (s *groupService) Create(ctx context.Context, db *gorm.DB, ownerID string, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.TransientStoreError(tx.Error)
	}
	defer tx.Rollback()

	group := &models.Group{Name: req.Name, OwnerID: ownerID}
	if err := s.groupRepo.Create(tx, group); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	now := time.Now()
	if err := s.groupRepo.AddMember(tx, &models.GroupMember{
		GroupID:  group.ID,
		UserID:   ownerID,
		Role:     models.GroupRoleOwner,
		JoinedAt: now,
	}); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	for _, memberID := range req.MemberIDs {
		if memberID == ownerID {
			continue
		}
		if err := s.groupRepo.AddMember(tx, &models.GroupMember{
			GroupID:  group.ID,
			UserID:   memberID,
			Role:     models.GroupRoleMember,
			JoinedAt: now,
		}); err != nil {
			return nil, apperrors.TransientStoreError(err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	created, err := s.groupRepo.FindByID(db, group.ID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return buildGroupResponse(created), nil
}

func (s *groupService) Get(ctx context.Context, db *gorm.DB, userID, groupID string) (*dto.GroupResponse, error) {
	group, err := s.groupRepo.FindByID(db, groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}
	member, err := s.groupRepo.IsMember(db, groupID, userID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	if !member {
		return nil, apperrors.ErrNotConversationMember
	}
	return buildGroupResponse(group), nil
}

func (s *groupService) Invite(ctx context.Context, db *gorm.DB, inviterID, groupID, inviteeID string) error {
	if _, err := s.groupRepo.FindByID(db, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.TransientStoreError(err)
	}
	isMember, err := s.groupRepo.IsMember(db, groupID, inviterID)
	if err != nil {
		return apperrors.TransientStoreError(err)
	}
	if !isMember {
		return apperrors.ErrNotConversationMember
	}
	already, err := s.groupRepo.IsMember(db, groupID, inviteeID)
	if err != nil {
		return apperrors.TransientStoreError(err)
	}
	if already {
		// Inviting an existing member is a no-op.
		return nil
	}

	// Duplicate pending invites collapse inside the dispatcher.
	if _, err := s.notifications.Create(ctx, db, inviteeID, inviterID, models.NotificationGroupInvite, groupID, realtime.PriorityHigh); err != nil {
		return err
	}
	return nil
}

func (s *groupService) AcceptInvite(ctx context.Context, db *gorm.DB, userID, groupID string) (*dto.GroupResponse, error) {
	if _, err := s.groupRepo.FindByID(db, groupID); err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}

	err := s.groupRepo.AddMember(db, &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.GroupRoleMember,
		JoinedAt: time.Now(),
	})
	if err != nil && !isDuplicateKey(err) {
		return nil, apperrors.TransientStoreError(err)
	}

	s.publishMembership(groupID, userID, realtime.EventInsert)

	refreshed, err := s.groupRepo.FindByID(db, groupID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return buildGroupResponse(refreshed), nil
}

func (s *groupService) RemoveMember(ctx context.Context, db *gorm.DB, actorID, groupID, userID string) error {
	target, err := s.groupRepo.FindMember(db, groupID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			// Removing a non-member is a no-op.
			return nil
		}
		return apperrors.TransientStoreError(err)
	}
	if target.Role == models.GroupRoleOwner {
		return apperrors.ErrInvalidOperation("group", "The group owner cannot be removed")
	}

	if actorID != userID {
		actor, err := s.groupRepo.FindMember(db, groupID, actorID)
		if err != nil {
			if errors.Is(err, repositories.ErrMemberNotFound) {
				return apperrors.ErrNotConversationMember
			}
			return apperrors.TransientStoreError(err)
		}
		if !actor.IsModerator() {
			return apperrors.NewForbiddenError("Only group moderators can remove members")
		}
	}

	if err := s.groupRepo.RemoveMember(db, groupID, userID); err != nil {
		return apperrors.TransientStoreError(err)
	}
	if err := s.readStatus.PurgeMemberReceipts(ctx, db, groupID, userID); err != nil {
		logger.CtxWarn(ctx, "receipt purge after member removal failed",
			"group_id", groupID, "user_id", userID, "error", err)
	}
	s.cache.InvalidatePrefix(ctx, cache.UnreadPrefix(userID))
	s.publishMembership(groupID, userID, realtime.EventDelete)
	return nil
}

func (s *groupService) publishMembership(groupID, userID string, typ realtime.EventType) {
	event := realtime.Event{
		Type:     typ,
		Table:    "group_members",
		Priority: realtime.PriorityMedium,
		Payload:  map[string]string{"group_id": groupID, "user_id": userID},
	}
	s.bus.Publish(realtime.ConversationChannel(chat.GroupRef(groupID)), event)
	s.bus.Publish(realtime.UserChannel(userID), event)
}

func buildGroupResponse(g *models.Group) *dto.GroupResponse {
	members := make([]*dto.GroupMemberResponse, 0, len(g.Members))
	for i := range g.Members {
		m := &g.Members[i]
		members = append(members, &dto.GroupMemberResponse{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return &dto.GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		OwnerID:   g.OwnerID,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}
