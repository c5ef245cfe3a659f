package workers

import (
	"context"
	"time"

	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/repositories"

	"gorm.io/gorm"
)

// NotificationRetention prunes read notifications past their retention
// period. Unread notifications are never pruned.
const notificationRetention = 30 * 24 * time.Hour

type RetentionWorker struct {
	db               *gorm.DB
	notificationRepo repositories.NotificationRepository
}

func NewRetentionWorker(db *gorm.DB, notificationRepo repositories.NotificationRepository) *RetentionWorker {
	return &RetentionWorker{db: db, notificationRepo: notificationRepo}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	go w.pruneNotifications(ctx)
}

func (w *RetentionWorker) pruneNotifications(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("retention worker stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-notificationRetention)
			removed, err := w.notificationRepo.DeleteReadOlderThan(w.db, cutoff)
			if err != nil {
				logger.Warn("notification pruning failed", "error", err)
			} else if removed > 0 {
				logger.Info("pruned read notifications", "count", removed)
			}
		}
	}
}
