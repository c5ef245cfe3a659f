package services

import (
	"context"
	"errors"
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

// DeleteGraceWindow is how long a sender may self-delete a message.
const DeleteGraceWindow = 2 * time.Minute

type MessageService interface {
	Send(ctx context.Context, db *gorm.DB, senderID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error)

	// Delete applies the deletion rule table per message id and returns a
	// structured outcome for each. Missing and already-deleted ids are
	// no-op successes.
	Delete(ctx context.Context, db *gorm.DB, actorID string, messageIDs []string) []dto.DeleteResult

	GetPrivateHistory(ctx context.Context, db *gorm.DB, userID, peerID string, criteria repositories.MessageCriteria) (*dto.MessageListResponse, error)
	GetGroupHistory(ctx context.Context, db *gorm.DB, userID, groupID string, criteria repositories.MessageCriteria) (*dto.MessageListResponse, error)
}

type messageService struct {
	messageRepo    repositories.MessageRepository
	receiptRepo    repositories.ReadReceiptRepository
	groupRepo      repositories.GroupRepository
	friendshipRepo repositories.FriendshipRepository
	readStatus     ReadStatusService
	cache          *cache.Cache
	bus            *realtime.Bus
}

func NewMessageService(
	messageRepo repositories.MessageRepository,
	receiptRepo repositories.ReadReceiptRepository,
	groupRepo repositories.GroupRepository,
	friendshipRepo repositories.FriendshipRepository,
	readStatus ReadStatusService,
	cacheLayer *cache.Cache,
	bus *realtime.Bus,
) MessageService {
	return &messageService{
		messageRepo:    messageRepo,
		receiptRepo:    receiptRepo,
		groupRepo:      groupRepo,
		friendshipRepo: friendshipRepo,
		readStatus:     readStatus,
		cache:          cacheLayer,
		bus:            bus,
	}
}

func (s *messageService) Send(ctx context.Context, db *gorm.DB, senderID string, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	if (req.ReceiverID != nil) == (req.GroupID != nil) {
		return nil, apperrors.NewBadRequestError("exactly one of receiver_id or group_id is required")
	}
	if !chat.ValidMessageType(req.Type) {
		return nil, apperrors.ErrInvalidMessageType
	}

	if req.ReceiverID != nil {
		friends, err := s.friendshipRepo.AreFriends(db, senderID, *req.ReceiverID)
		if err != nil {
			return nil, apperrors.TransientStoreError(err)
		}
		if !friends {
			return nil, apperrors.ErrFriendshipRequired
		}
	} else {
		isMember, err := s.groupRepo.IsMember(db, *req.GroupID, senderID)
		if err != nil {
			return nil, apperrors.TransientStoreError(err)
		}
		if !isMember {
			return nil, apperrors.ErrNotConversationMember
		}
	}

	message := &chat.Message{
		SenderID:   senderID,
		ReceiverID: req.ReceiverID,
		GroupID:    req.GroupID,
		Type:       req.Type,
		Content:    req.Content,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.TransientStoreError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.messageRepo.Create(tx, message); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	// Receipt fan-out shares the send transaction: either the message and
	// all its receipts exist, or none do.
	if _, err := s.readStatus.FanOutReceipts(tx, message); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	s.afterWrite(ctx, db, message, realtime.EventInsert)

	return buildMessageResponse(message, nil), nil
}

func (s *messageService) Delete(ctx context.Context, db *gorm.DB, actorID string, messageIDs []string) []dto.DeleteResult {
	results := make([]dto.DeleteResult, 0, len(messageIDs))
	for _, id := range messageIDs {
		err := s.deleteOne(ctx, db, actorID, id)
		result := dto.DeleteResult{MessageID: id, Success: err == nil}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (s *messageService) deleteOne(ctx context.Context, db *gorm.DB, actorID, messageID string) error {
	message, err := s.messageRepo.FindByID(db, messageID)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			// Deleting a nonexistent id is a no-op success.
			return nil
		}
		return apperrors.TransientStoreError(err)
	}
	if message.Deleted {
		return nil
	}

	if message.IsPrivate() {
		return s.deletePrivate(ctx, db, actorID, message)
	}
	return s.deleteGroup(ctx, db, actorID, message)
}

func (s *messageService) deletePrivate(ctx context.Context, db *gorm.DB, actorID string, message *chat.Message) error {
	if actorID != message.SenderID {
		return apperrors.ErrCannotDeleteMessage
	}
	if time.Since(message.CreatedAt) > DeleteGraceWindow {
		return apperrors.ErrDeleteWindowExpired
	}
	return s.hardDelete(ctx, db, message)
}

func (s *messageService) deleteGroup(ctx context.Context, db *gorm.DB, actorID string, message *chat.Message) error {
	member, err := s.groupRepo.FindMember(db, *message.GroupID, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrMemberNotFound) {
			return apperrors.ErrNotConversationMember
		}
		return apperrors.TransientStoreError(err)
	}

	if actorID == message.SenderID {
		// Moderators may remove their own messages at any time; regular
		// members only within the grace window.
		if !member.IsModerator() && time.Since(message.CreatedAt) > DeleteGraceWindow {
			return apperrors.ErrDeleteWindowExpired
		}
		return s.hardDelete(ctx, db, message)
	}

	if !member.IsModerator() {
		return apperrors.ErrCannotDeleteMessage
	}

	// Moderator acting on someone else's message: keep the row for audit,
	// receipts retained.
	if err := s.messageRepo.SoftDelete(db, message.ID, chat.DeletionByModerator); err != nil {
		return apperrors.TransientStoreError(err)
	}

	message.Deleted = true
	message.Content = ""
	s.afterWrite(ctx, db, message, realtime.EventUpdate)
	return nil
}

func (s *messageService) hardDelete(ctx context.Context, db *gorm.DB, message *chat.Message) error {
	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.TransientStoreError(tx.Error)
	}
	defer tx.Rollback()

	if message.GroupID != nil {
		if err := s.receiptRepo.DeleteByMessage(tx, message.ID); err != nil {
			return apperrors.TransientStoreError(err)
		}
	}
	if err := s.messageRepo.HardDelete(tx, message.ID); err != nil {
		return apperrors.TransientStoreError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return apperrors.TransientStoreError(err)
	}

	s.afterWrite(ctx, db, message, realtime.EventDelete)
	return nil
}

// afterWrite invalidates the derived caches touched by a message mutation
// and publishes the change event. Runs after commit; both are best-effort.
func (s *messageService) afterWrite(ctx context.Context, db *gorm.DB, message *chat.Message, eventType realtime.EventType) {
	ref := message.Ref()

	s.cache.InvalidatePrefix(ctx, cache.MessagesPrefix(ref))

	if message.ReceiverID != nil {
		s.cache.InvalidatePrefix(ctx, cache.UnreadPrefix(*message.ReceiverID))
	} else if message.GroupID != nil {
		memberIDs, err := s.groupRepo.FindMemberIDs(db, *message.GroupID)
		if err != nil {
			logger.CtxWarn(ctx, "unread invalidation skipped", "group_id", *message.GroupID, "error", err)
		}
		for _, memberID := range memberIDs {
			if memberID != message.SenderID {
				s.cache.InvalidatePrefix(ctx, cache.UnreadPrefix(memberID))
			}
		}
	}

	s.bus.Publish(realtime.ConversationChannel(ref), realtime.Event{
		Type:    eventType,
		Table:   "messages",
		Payload: messagePayload(message),
	})
}

func messagePayload(message *chat.Message) realtime.MessagePayload {
	content := message.Content
	if message.Deleted {
		content = dto.DeletedContentMarker
	}
	return realtime.MessagePayload{
		ID:              message.ID,
		ConversationRef: message.Ref(),
		SenderID:        message.SenderID,
		Type:            string(message.Type),
		Content:         content,
		Deleted:         message.Deleted,
		CreatedAt:       message.CreatedAt,
	}
}

func (s *messageService) GetPrivateHistory(ctx context.Context, db *gorm.DB, userID, peerID string, criteria repositories.MessageCriteria) (*dto.MessageListResponse, error) {
	friends, err := s.friendshipRepo.AreFriends(db, userID, peerID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	if !friends {
		return nil, apperrors.ErrFriendshipRequired
	}

	messages, total, err := s.messageRepo.FindPrivateMessages(db, userID, peerID, criteria)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return buildMessageList(messages, total, criteria), nil
}

func (s *messageService) GetGroupHistory(ctx context.Context, db *gorm.DB, userID, groupID string, criteria repositories.MessageCriteria) (*dto.MessageListResponse, error) {
	isMember, err := s.groupRepo.IsMember(db, groupID, userID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	if !isMember {
		return nil, apperrors.ErrNotConversationMember
	}

	messages, total, err := s.messageRepo.FindGroupMessages(db, groupID, criteria)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return buildMessageList(messages, total, criteria), nil
}

func buildMessageList(messages []chat.Message, total int64, criteria repositories.MessageCriteria) *dto.MessageListResponse {
	responses := make([]*dto.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, buildMessageResponse(&messages[i], nil))
	}
	return &dto.MessageListResponse{
		Messages: responses,
		Total:    total,
		HasMore:  int64(criteria.Offset+len(messages)) < total,
	}
}

func buildMessageResponse(message *chat.Message, readBy []string) *dto.MessageResponse {
	content := message.Content
	if message.Deleted {
		content = dto.DeletedContentMarker
	}
	return &dto.MessageResponse{
		ID:              message.ID,
		ConversationRef: message.Ref(),
		SenderID:        message.SenderID,
		ReceiverID:      message.ReceiverID,
		GroupID:         message.GroupID,
		Type:            message.Type,
		Content:         content,
		IsRead:          message.IsRead,
		Deleted:         message.Deleted,
		CreatedAt:       message.CreatedAt,
		ReadBy:          readBy,
	}
}
