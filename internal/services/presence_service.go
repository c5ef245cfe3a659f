package services

import (
	"context"
	"errors"
	"time"

	"campustalk_backend/internal/models"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type PresenceService interface {
	// Heartbeat refreshes the last-seen timestamp without touching the
	// explicit status. Clients call it on an interval while connected.
	Heartbeat(ctx context.Context, db *gorm.DB, userID string) error

	// SetStatus records the client-chosen status and publishes it.
	SetStatus(ctx context.Context, db *gorm.DB, userID string, status models.PresenceStatus) error

	GetPresence(ctx context.Context, db *gorm.DB, userID string) (*dto.PresenceResponse, error)
	GetPresences(ctx context.Context, db *gorm.DB, userIDs []string) ([]*dto.PresenceResponse, error)
}

type presenceService struct {
	userRepo  repositories.UserRepository
	bus       *realtime.Bus
	heartbeat time.Duration
	now       func() time.Time
}

func NewPresenceService(userRepo repositories.UserRepository, bus *realtime.Bus, heartbeat time.Duration) PresenceService {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &presenceService{
		userRepo:  userRepo,
		bus:       bus,
		heartbeat: heartbeat,
		now:       time.Now,
	}
}

func (s *presenceService) Heartbeat(ctx context.Context, db *gorm.DB, userID string) error {
	if err := s.userRepo.TouchLastSeen(db, userID, s.now()); err != nil {
		return apperrors.TransientStoreError(err)
	}
	return nil
}

func (s *presenceService) SetStatus(ctx context.Context, db *gorm.DB, userID string, status models.PresenceStatus) error {
	switch status {
	case models.PresenceOnline, models.PresenceAway, models.PresenceOffline:
	default:
		return apperrors.ValidationError("unknown presence status")
	}
	now := s.now()
	if err := s.userRepo.UpdatePresence(db, userID, status, now); err != nil {
		return apperrors.TransientStoreError(err)
	}

	s.bus.Publish(realtime.UserChannel(userID), realtime.Event{
		Type:     realtime.EventUpdate,
		Table:    "users",
		Priority: realtime.PriorityLow,
		Payload:  &dto.PresenceResponse{UserID: userID, Status: status, LastSeenAt: &now},
	})
	return nil
}

func (s *presenceService) GetPresence(ctx context.Context, db *gorm.DB, userID string) (*dto.PresenceResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}
	return s.buildPresence(user), nil
}

func (s *presenceService) GetPresences(ctx context.Context, db *gorm.DB, userIDs []string) ([]*dto.PresenceResponse, error) {
	if len(userIDs) == 0 {
		return []*dto.PresenceResponse{}, nil
	}
	users, err := s.userRepo.FindByIDs(db, userIDs)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	responses := make([]*dto.PresenceResponse, 0, len(users))
	for i := range users {
		responses = append(responses, s.buildPresence(&users[i]))
	}
	return responses, nil
}

func (s *presenceService) buildPresence(user *models.User) *dto.PresenceResponse {
	return &dto.PresenceResponse{
		UserID:     user.ID,
		Status:     user.EffectivePresence(s.now(), s.heartbeat),
		LastSeenAt: user.LastSeenAt,
	}
}
