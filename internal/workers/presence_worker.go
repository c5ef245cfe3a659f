package workers

import (
	"context"
	"time"

	"campustalk_backend/internal/logger"
	"campustalk_backend/internal/models"

	"gorm.io/gorm"
)

// PresenceWorker downgrades users with stale heartbeats to offline.
// Reads still resolve staleness on the fly; the worker just keeps the
// stored rows from drifting too far from reality.
type PresenceWorker struct {
	db        *gorm.DB
	heartbeat time.Duration
}

func NewPresenceWorker(db *gorm.DB, heartbeat time.Duration) *PresenceWorker {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &PresenceWorker{db: db, heartbeat: heartbeat}
}

func (w *PresenceWorker) Start(ctx context.Context) {
	go w.sweepStale(ctx)
}

func (w *PresenceWorker) sweepStale(ctx context.Context) {
	ticker := time.NewTicker(w.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("presence worker stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-3 * w.heartbeat)
			result := w.db.Model(&models.User{}).
				Where("status <> ? AND (last_seen_at IS NULL OR last_seen_at < ?)", models.PresenceOffline, cutoff).
				Update("status", models.PresenceOffline)
			if result.Error != nil {
				logger.Warn("presence sweep failed", "error", result.Error)
			} else if result.RowsAffected > 0 {
				logger.Info("marked stale users offline", "count", result.RowsAffected)
			}
		}
	}
}
