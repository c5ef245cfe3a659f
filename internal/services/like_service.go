package services

import (
	"context"
	"errors"
	"time"

	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type LikeService interface {
	CreateConfession(ctx context.Context, db *gorm.DB, authorID, content string) (*dto.ConfessionResponse, error)
	GetConfession(ctx context.Context, db *gorm.DB, confessionID string) (*dto.ConfessionResponse, error)
	ListConfessions(ctx context.Context, db *gorm.DB, page, pageSize int) (*dto.ConfessionListResponse, error)

	// ToggleLike flips the caller's like. Check-then-act without a lock:
	// the unique index resolves races, and a toggle that loses one lands
	// on the state the winner produced. The response is authoritative.
	ToggleLike(ctx context.Context, db *gorm.DB, userID, confessionID string) (*dto.ToggleLikeResponse, error)
}

type likeService struct {
	confessionRepo repositories.ConfessionRepository
	cache          *cache.Cache
	detailTTL      time.Duration
	listTTL        time.Duration
}

func NewLikeService(confessionRepo repositories.ConfessionRepository, c *cache.Cache, detailTTL, listTTL time.Duration) LikeService {
	if detailTTL <= 0 {
		detailTTL = 5 * time.Minute
	}
	if listTTL <= 0 {
		listTTL = time.Minute
	}
	return &likeService{
		confessionRepo: confessionRepo,
		cache:          c,
		detailTTL:      detailTTL,
		listTTL:        listTTL,
	}
}

func (s *likeService) CreateConfession(ctx context.Context, db *gorm.DB, authorID, content string) (*dto.ConfessionResponse, error) {
	if content == "" {
		return nil, apperrors.ValidationError("content must not be empty")
	}
	confession := &models.Confession{AuthorID: authorID, Content: content}
	if err := s.confessionRepo.Create(db, confession); err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	s.cache.InvalidatePrefix(ctx, cache.ConfessionListPrefix)
	return buildConfessionResponse(confession, 0), nil
}

func (s *likeService) GetConfession(ctx context.Context, db *gorm.DB, confessionID string) (*dto.ConfessionResponse, error) {
	response, err := cache.GetOrSet(ctx, s.cache, cache.ConfessionDetailKey(confessionID), s.detailTTL,
		func(ctx context.Context) (*dto.ConfessionResponse, error) {
			confession, err := s.confessionRepo.FindByID(db, confessionID)
			if err != nil {
				return nil, err
			}
			likes, err := s.confessionRepo.CountLikes(db, confessionID)
			if err != nil {
				return nil, err
			}
			return buildConfessionResponse(confession, likes), nil
		},
		func(err error) bool { return errors.Is(err, repositories.ErrConfessionNotFound) },
	)
	if err != nil {
		if errors.Is(err, repositories.ErrConfessionNotFound) || errors.Is(err, cache.ErrNegativeEntry) {
			return nil, apperrors.ErrNotFound(repositories.ErrConfessionNotFound)
		}
		return nil, apperrors.TransientStoreError(err)
	}
	return response, nil
}

func (s *likeService) ListConfessions(ctx context.Context, db *gorm.DB, page, pageSize int) (*dto.ConfessionListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	response, err := cache.GetOrSet(ctx, s.cache, cache.ConfessionListKey(page, pageSize), s.listTTL,
		func(ctx context.Context) (*dto.ConfessionListResponse, error) {
			confessions, total, err := s.confessionRepo.List(db, page, pageSize)
			if err != nil {
				return nil, err
			}
			responses := make([]*dto.ConfessionResponse, 0, len(confessions))
			for i := range confessions {
				likes, cerr := s.confessionRepo.CountLikes(db, confessions[i].ID)
				if cerr != nil {
					return nil, cerr
				}
				responses = append(responses, buildConfessionResponse(&confessions[i], likes))
			}
			return &dto.ConfessionListResponse{Confessions: responses, Total: total}, nil
		},
		nil,
	)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return response, nil
}

func (s *likeService) ToggleLike(ctx context.Context, db *gorm.DB, userID, confessionID string) (*dto.ToggleLikeResponse, error) {
	if _, err := s.confessionRepo.FindByID(db, confessionID); err != nil {
		if errors.Is(err, repositories.ErrConfessionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.TransientStoreError(err)
	}

	exists, err := s.confessionRepo.LikeExists(db, confessionID, userID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}

	liked := false
	if exists {
		// Unlike. Zero rows means a racing toggle got there first; the
		// observable outcome (not liked) is the same either way.
		if _, err := s.confessionRepo.DeleteLike(db, confessionID, userID); err != nil {
			return nil, apperrors.TransientStoreError(err)
		}
	} else {
		err := s.confessionRepo.CreateLike(db, &models.ConfessionLike{
			ConfessionID: confessionID,
			UserID:       userID,
		})
		if err != nil && !isDuplicateKey(err) {
			return nil, apperrors.TransientStoreError(err)
		}
		liked = true
	}

	s.cache.InvalidatePrefix(ctx, cache.ConfessionPrefix(confessionID))
	s.cache.InvalidatePrefix(ctx, cache.ConfessionListPrefix)

	count, err := s.confessionRepo.CountLikes(db, confessionID)
	if err != nil {
		return nil, apperrors.TransientStoreError(err)
	}
	return &dto.ToggleLikeResponse{
		ConfessionID: confessionID,
		Liked:        liked,
		LikeCount:    count,
	}, nil
}

func buildConfessionResponse(c *models.Confession, likes int64) *dto.ConfessionResponse {
	return &dto.ConfessionResponse{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Content:   c.Content,
		LikeCount: likes,
		CreatedAt: c.CreatedAt,
	}
}
