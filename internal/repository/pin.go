package repository

import (
	"context"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// PinRepository records one-way post promotions.
type PinRepository interface {
	Exists(ctx context.Context, postID int64) (bool, error)
	Insert(ctx context.Context, postID, likeCount int64) (bool, error)
}

type pinRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPinRepository creates a new PinRepository
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db, log: observability.NewRepoLogger("pinned_posts")}
}

func (r *pinRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PinnedPost{}).
		Where("channel_message_id = ?", postID).
		Count(&count).Error
	if err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, database.ClassifyError(err)
	}
	return count > 0, nil
}

// Insert returns true only for the single caller whose row was written.
func (r *pinRepository) Insert(ctx context.Context, postID, likeCount int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO pinned_posts (channel_message_id, like_count_at_pin, pinned_at)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (channel_message_id) DO NOTHING`,
		postID, likeCount,
	)
	if res.Error != nil {
		if database.IsUniqueViolation(res.Error) {
			r.log.LogConflict(ctx, "insert")
			return false, nil
		}
		r.log.LogError(ctx, res.Error, "insert")
		return false, database.ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.LogConflict(ctx, "insert")
	}
	return res.RowsAffected == 1, nil
}
