package services

import (
	"context"
	"time"

	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// UnreadService derives unread counts. Nothing is persisted: every count
// recomputes from messages and receipts, with the cache layer in front.
// Invalidation is event-driven from the mutation paths (message insert,
// read marking, membership removal); nothing polls.
type UnreadService interface {
	PrivateUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	GroupUnread(ctx context.Context, db *gorm.DB, userID, groupID string) (int64, error)

	// TotalUnread sums private plus per-group counts over the user's
	// current memberships. A group the user left contributes nothing even
	// if stale receipt rows are still physically present.
	TotalUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	Summary(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadSummary, error)
}

type unreadService struct {
	messageRepo repositories.MessageRepository
	receiptRepo repositories.ReadReceiptRepository
	groupRepo   repositories.GroupRepository
	cache       *cache.Cache
	countTTL    time.Duration
}

func NewUnreadService(
	messageRepo repositories.MessageRepository,
	receiptRepo repositories.ReadReceiptRepository,
	groupRepo repositories.GroupRepository,
	cacheLayer *cache.Cache,
	countTTL time.Duration,
) UnreadService {
	if countTTL <= 0 {
		countTTL = time.Minute
	}
	return &unreadService{
		messageRepo: messageRepo,
		receiptRepo: receiptRepo,
		groupRepo:   groupRepo,
		cache:       cacheLayer,
		countTTL:    countTTL,
	}
}

func (s *unreadService) PrivateUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	count, err := cache.GetOrSet(ctx, s.cache, cache.UnreadPrivateKey(userID), s.countTTL,
		func(ctx context.Context) (int64, error) {
			return s.messageRepo.CountPrivateUnread(db, userID)
		}, nil)
	if err != nil {
		return 0, apperrors.TransientStoreError(err)
	}
	return count, nil
}

func (s *unreadService) GroupUnread(ctx context.Context, db *gorm.DB, userID, groupID string) (int64, error) {
	// Membership gates the count: stale receipts from a departed member
	// must not surface.
	isMember, err := s.groupRepo.IsMember(db, groupID, userID)
	if err != nil {
		return 0, apperrors.TransientStoreError(err)
	}
	if !isMember {
		return 0, nil
	}

	count, err := cache.GetOrSet(ctx, s.cache, cache.UnreadGroupKey(userID, groupID), s.countTTL,
		func(ctx context.Context) (int64, error) {
			return s.receiptRepo.CountUnread(db, groupID, userID)
		}, nil)
	if err != nil {
		return 0, apperrors.TransientStoreError(err)
	}
	return count, nil
}

func (s *unreadService) TotalUnread(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	summary, err := s.Summary(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	return summary.Total, nil
}

func (s *unreadService) Summary(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadSummary, error) {
	private, err := s.PrivateUnread(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	groupIDs, err := s.groupRepo.FindUserGroupIDs(db, userID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	summary := &dto.UnreadSummary{
		Private: private,
		Groups:  make(map[string]int64, len(groupIDs)),
		Total:   private,
	}
	for _, groupID := range groupIDs {
		count, err := cache.GetOrSet(ctx, s.cache, cache.UnreadGroupKey(userID, groupID), s.countTTL,
			func(ctx context.Context) (int64, error) {
				return s.receiptRepo.CountUnread(db, groupID, userID)
			}, nil)
		if err != nil {
			return nil, apperrors.TransientStoreError(err)
		}
		summary.Groups[groupID] = count
		summary.Total += count
	}
	return summary, nil
}
