package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// EmailChannel is the optional side channel for high-priority publishes.
// Implementations resolve the recipient's address from the user id.
type EmailChannel interface {
	SendNotification(recipientID, subject, body string) error
}

type NotificationService interface {
	// Create persists the notification durably, then publishes it
	// best-effort. A failed durable write fails the whole operation; a
	// failed publish is logged and swallowed; the persisted row is never
	// rolled back for a delivery problem.
	Create(ctx context.Context, db *gorm.DB, recipientID, senderID string, typ models.NotificationType, relatedEntityID string, priority realtime.Priority) (*dto.NotificationResponse, error)

	// Publish fans an already-persisted notification out to realtime
	// subscribers. Best-effort; never returns delivery errors.
	Publish(ctx context.Context, notification *models.Notification, priority realtime.Priority)

	List(ctx context.Context, db *gorm.DB, recipientID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, recipientID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, recipientID string) error
	UnreadCount(ctx context.Context, db *gorm.DB, recipientID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	bus              *realtime.Bus
	email            EmailChannel // nil disables the email side channel
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	bus *realtime.Bus,
	email EmailChannel,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		bus:              bus,
		email:            email,
	}
}

// contentFor denormalizes the display text at creation time. Later display
// name changes do not rewrite old notifications.
func contentFor(typ models.NotificationType, senderName string) string {
	switch typ {
	case models.NotificationFriendRequest:
		return fmt.Sprintf("%s sent you a friend request", senderName)
	case models.NotificationFriendRequestSent:
		return fmt.Sprintf("Your friend request to %s was sent", senderName)
	case models.NotificationFriendAccepted:
		return fmt.Sprintf("%s accepted your friend request", senderName)
	case models.NotificationFriendRejected:
		return fmt.Sprintf("%s declined your friend request", senderName)
	case models.NotificationGroupInvite:
		return fmt.Sprintf("%s invited you to a group", senderName)
	}
	return senderName
}

func (s *notificationService) Create(ctx context.Context, db *gorm.DB, recipientID, senderID string, typ models.NotificationType, relatedEntityID string, priority realtime.Priority) (*dto.NotificationResponse, error) {
	sender, err := s.userRepo.FindByID(db, senderID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}

	// For request-style types a pending duplicate from the same sender is
	// idempotent success: hand back the existing record.
	if typ == models.NotificationFriendRequest || typ == models.NotificationGroupInvite {
		if existing, derr := s.notificationRepo.FindPendingDuplicate(db, recipientID, senderID, typ); derr == nil {
			return buildNotificationResponse(existing), nil
		}
	}

	notification := &models.Notification{
		RecipientID:     recipientID,
		SenderID:        senderID,
		Type:            typ,
		Content:         contentFor(typ, sender.DisplayName),
		RelatedEntityID: relatedEntityID,
	}

	if err := s.notificationRepo.Create(db, notification); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	s.Publish(ctx, notification, priority)

	return buildNotificationResponse(notification), nil
}

func (s *notificationService) Publish(ctx context.Context, notification *models.Notification, priority realtime.Priority) {
	if priority == "" {
		priority = realtime.PriorityMedium
	}

	s.bus.Publish(realtime.UserChannel(notification.RecipientID), realtime.Event{
		Type:     realtime.EventInsert,
		Table:    "notifications",
		Priority: priority,
		Payload:  buildNotificationResponse(notification),
	})

	if priority == realtime.PriorityHigh && s.email != nil {
		// Email failures are a delivery concern, not a correctness one.
		go func(n models.Notification) {
			if err := s.email.SendNotification(n.RecipientID, string(n.Type), n.Content); err != nil {
				logger.Warn("notification email failed",
					"notification_id", n.ID, "error", err)
			}
		}(*notification)
	}
}

func (s *notificationService) List(ctx context.Context, db *gorm.DB, recipientID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	notifications, total, err := s.notificationRepo.FindUserNotifications(db, recipientID, criteria)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	unread, err := s.notificationRepo.GetUnreadCount(db, recipientID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	responses := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, buildNotificationResponse(&notifications[i]))
	}
	return &dto.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, recipientID, notificationID string) error {
	notification, err := s.notificationRepo.FindByID(db, notificationID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.TransientStoreError(err)
	}
	if notification.RecipientID != recipientID {
		return apperrors.NewForbiddenError("notification belongs to another user")
	}
	if err := s.notificationRepo.MarkAsRead(db, notificationID, time.Now()); err != nil {
		return apperrors.TransientStoreError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, recipientID string) error {
	if err := s.notificationRepo.MarkAllAsRead(db, recipientID, time.Now()); err != nil {
		return apperrors.TransientStoreError(err)
	}
	return nil
}

func (s *notificationService) UnreadCount(ctx context.Context, db *gorm.DB, recipientID string) (int64, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, recipientID)
	if err != nil {
		return 0, apperrors.TransientStoreError(err)
	}
	return count, nil
}

func buildNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:              n.ID,
		RecipientID:     n.RecipientID,
		SenderID:        n.SenderID,
		Type:            n.Type,
		Content:         n.Content,
		RelatedEntityID: n.RelatedEntityID,
		ReadStatus:      n.ReadStatus,
		CreatedAt:       n.CreatedAt,
	}
}
