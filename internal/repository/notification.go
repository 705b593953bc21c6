package repository

import (
	"context"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// NotificationRepository is the dedup ledger for author notifications.
type NotificationRepository interface {
	Record(ctx context.Context, postID, actorID int64, kind models.NotificationKind) (bool, error)
}

type notificationRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db, log: observability.NewRepoLogger("notifications")}
}

// Record claims the (post, actor, kind) slot. It returns false when a
// notification of that kind was already recorded.
func (r *notificationRepository) Record(ctx context.Context, postID, actorID int64, kind models.NotificationKind) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO notifications (channel_message_id, user_id, notification_type, timestamp)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (channel_message_id, user_id, notification_type) DO NOTHING`,
		postID, actorID, string(kind),
	)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "record")
		return false, database.ClassifyError(res.Error)
	}
	return res.RowsAffected == 1, nil
}
