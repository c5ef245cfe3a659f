package services

import (
	"context"
	"errors"
	"strings"

	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type FriendshipService interface {
	// SendRequest creates a pending friendship. A duplicate request, in
	// either direction, is idempotent success returning the existing record.
	SendRequest(ctx context.Context, db *gorm.DB, requesterID, addresseeID string) (*dto.FriendshipResponse, error)

	Accept(ctx context.Context, db *gorm.DB, userID, friendshipID string) (*dto.FriendshipResponse, error)
	Reject(ctx context.Context, db *gorm.DB, userID, friendshipID string) (*dto.FriendshipResponse, error)
}

type friendshipService struct {
	friendshipRepo repositories.FriendshipRepository
	userRepo       repositories.UserRepository
	notifications  NotificationService
}

func NewFriendshipService(
	friendshipRepo repositories.FriendshipRepository,
	userRepo repositories.UserRepository,
	notifications NotificationService,
) FriendshipService {
	return &friendshipService{
		friendshipRepo: friendshipRepo,
		userRepo:       userRepo,
		notifications:  notifications,
	}
}

// isDuplicateKey recognizes unique constraint violations across drivers.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

func (s *friendshipService) SendRequest(ctx context.Context, db *gorm.DB, requesterID, addresseeID string) (*dto.FriendshipResponse, error) {
	if requesterID == addresseeID {
		return nil, apperrors.ErrInvalidOperation("friendship", "Cannot send a friend request to yourself")
	}
	if _, err := s.userRepo.FindByID(db, addresseeID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}

	existing, err := s.friendshipRepo.FindBetween(db, requesterID, addresseeID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.FriendshipPending, models.FriendshipAccepted:
			// Already requested or already friends.
			return buildFriendshipResponse(existing), nil
		case models.FriendshipRejected:
			// A rejected pair may try again; the old row is reopened.
			if uerr := s.friendshipRepo.UpdateStatus(db, existing.ID, models.FriendshipPending); uerr != nil {
				return nil, apperrors.TransientStoreError(uerr)
			}
			existing.Status = models.FriendshipPending
			s.notifyRequest(ctx, db, requesterID, addresseeID, existing.ID)
			return buildFriendshipResponse(existing), nil
		}
	case !errors.Is(err, repositories.ErrFriendshipNotFound):
		return nil, apperrors.TransientStoreError(err)
	}

	friendship := &models.Friendship{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.FriendshipPending,
	}
	if err := s.friendshipRepo.Create(db, friendship); err != nil {
		if isDuplicateKey(err) {
			// Lost a race with an identical request; the winner's row serves.
			if existing, ferr := s.friendshipRepo.FindBetween(db, requesterID, addresseeID); ferr == nil {
				return buildFriendshipResponse(existing), nil
			}
		}
		return nil, apperrors.TransientStoreError(err)
	}

	s.notifyRequest(ctx, db, requesterID, addresseeID, friendship.ID)
	return buildFriendshipResponse(friendship), nil
}

// notifyRequest emits the request pair. Notification failures never undo
// the friendship write.
func (s *friendshipService) notifyRequest(ctx context.Context, db *gorm.DB, requesterID, addresseeID, friendshipID string) {
	if _, err := s.notifications.Create(ctx, db, addresseeID, requesterID, models.NotificationFriendRequest, friendshipID, realtime.PriorityHigh); err != nil {
		logger.CtxWarn(ctx, "friend request notification failed", "friendship_id", friendshipID, "error", err)
	}
	if _, err := s.notifications.Create(ctx, db, requesterID, addresseeID, models.NotificationFriendRequestSent, friendshipID, realtime.PriorityLow); err != nil {
		logger.CtxWarn(ctx, "friend request echo notification failed", "friendship_id", friendshipID, "error", err)
	}
}

func (s *friendshipService) Accept(ctx context.Context, db *gorm.DB, userID, friendshipID string) (*dto.FriendshipResponse, error) {
	return s.resolve(ctx, db, userID, friendshipID, models.FriendshipAccepted, models.NotificationFriendAccepted)
}

func (s *friendshipService) Reject(ctx context.Context, db *gorm.DB, userID, friendshipID string) (*dto.FriendshipResponse, error) {
	return s.resolve(ctx, db, userID, friendshipID, models.FriendshipRejected, models.NotificationFriendRejected)
}

func (s *friendshipService) resolve(ctx context.Context, db *gorm.DB, userID, friendshipID string, status models.FriendshipStatus, notifType models.NotificationType) (*dto.FriendshipResponse, error) {
	friendship, err := s.friendshipRepo.FindByID(db, friendshipID)
	if err != nil {
		if errors.Is(err, repositories.ErrFriendshipNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}
	if friendship.AddresseeID != userID {
		return nil, apperrors.NewForbiddenError("Only the addressee can resolve a friend request")
	}
	if friendship.Status == status {
		// Resolving twice with the same outcome is a no-op.
		return buildFriendshipResponse(friendship), nil
	}
	if friendship.Status != models.FriendshipPending {
		return nil, apperrors.ErrInvalidOperation("friendship", "Friend request already resolved")
	}

	if err := s.friendshipRepo.UpdateStatus(db, friendshipID, status); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	friendship.Status = status

	if _, nerr := s.notifications.Create(ctx, db, friendship.RequesterID, userID, notifType, friendshipID, realtime.PriorityMedium); nerr != nil {
		logger.CtxWarn(ctx, "friend resolution notification failed", "friendship_id", friendshipID, "error", nerr)
	}
	return buildFriendshipResponse(friendship), nil
}

func buildFriendshipResponse(f *models.Friendship) *dto.FriendshipResponse {
	return &dto.FriendshipResponse{
		ID:          f.ID,
		RequesterID: f.RequesterID,
		AddresseeID: f.AddresseeID,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
	}
}
