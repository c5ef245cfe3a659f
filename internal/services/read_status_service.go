package services

import (
	"context"
	"time"

	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ReadStatusService interface {
	// FanOutReceipts creates one unread receipt per current group member
	// excluding the sender. Runs inside the send transaction; membership is
	// a snapshot, later joiners get no receipts for this message.
	FanOutReceipts(tx *gorm.DB, message *chat.Message) (int, error)

	// MarkAsRead marks the given message ids, or everything currently
	// unread in the conversation when ids are omitted. Idempotent.
	MarkAsRead(ctx context.Context, db *gorm.DB, userID string, req *dto.MarkAsReadRequest) (int64, error)

	// PurgeMemberReceipts removes a departed member's receipts for a group.
	PurgeMemberReceipts(ctx context.Context, db *gorm.DB, groupID, userID string) error
}

type readStatusService struct {
	receiptRepo repositories.ReadReceiptRepository
	messageRepo repositories.MessageRepository
	groupRepo   repositories.GroupRepository
	cache       *cache.Cache
	bus         *realtime.Bus
}

func NewReadStatusService(
	receiptRepo repositories.ReadReceiptRepository,
	messageRepo repositories.MessageRepository,
	groupRepo repositories.GroupRepository,
	cacheLayer *cache.Cache,
	bus *realtime.Bus,
) ReadStatusService {
	return &readStatusService{
		receiptRepo: receiptRepo,
		messageRepo: messageRepo,
		groupRepo:   groupRepo,
		cache:       cacheLayer,
		bus:         bus,
	}
}

func (s *readStatusService) FanOutReceipts(tx *gorm.DB, message *chat.Message) (int, error) {
	if message.GroupID == nil {
		return 0, nil
	}

	memberIDs, err := s.groupRepo.FindMemberIDs(tx, *message.GroupID)
	if err != nil {
		return 0, err
	}

	receipts := make([]chat.ReadReceipt, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		if memberID == message.SenderID {
			continue
		}
		receipts = append(receipts, chat.ReadReceipt{
			GroupID:   *message.GroupID,
			MessageID: message.ID,
			UserID:    memberID,
		})
	}

	if err := s.receiptRepo.CreateMany(tx, receipts); err != nil {
		return 0, err
	}
	return len(receipts), nil
}

func (s *readStatusService) MarkAsRead(ctx context.Context, db *gorm.DB, userID string, req *dto.MarkAsReadRequest) (int64, error) {
	if (req.PeerID != nil) == (req.GroupID != nil) {
		return 0, apperrors.NewBadRequestError("exactly one of peer_id or group_id is required")
	}

	var (
		marked int64
		ref    string
		err    error
	)

	if req.GroupID != nil {
		isMember, merr := s.groupRepo.IsMember(db, *req.GroupID, userID)
		if merr != nil {
			return 0, apperrors.TransientStoreError(merr)
		}
		if !isMember {
			return 0, apperrors.ErrNotConversationMember
		}
		marked, err = s.receiptRepo.MarkRead(db, *req.GroupID, userID, req.MessageIDs, time.Now())
		ref = chat.GroupRef(*req.GroupID)
	} else {
		marked, err = s.messageRepo.MarkPrivateRead(db, userID, *req.PeerID, req.MessageIDs)
		ref = chat.PrivateRef(userID, *req.PeerID)
	}
	if err != nil {
		return 0, apperrors.TransientStoreError(err)
	}

	// Nothing marked means the call was a repeat; still a success.
	if marked > 0 {
		s.cache.InvalidatePrefix(ctx, cache.UnreadPrefix(userID))
		s.bus.Publish(realtime.ConversationChannel(ref), realtime.Event{
			Type:  realtime.EventUpdate,
			Table: "read_status",
			Payload: map[string]interface{}{
				"conversation_ref": ref,
				"user_id":          userID,
				"marked":           marked,
			},
		})
	}

	logger.CtxDebug(ctx, "marked messages as read", "ref", ref, "count", marked)
	return marked, nil
}

func (s *readStatusService) PurgeMemberReceipts(ctx context.Context, db *gorm.DB, groupID, userID string) error {
	if err := s.receiptRepo.DeleteByGroupAndUser(db, groupID, userID); err != nil {
		return apperrors.TransientStoreError(err)
	}
	s.cache.InvalidatePrefix(ctx, cache.UnreadPrefix(userID))
	return nil
}
