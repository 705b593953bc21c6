package repository

import (
	"context"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// CollectionRepository defines bookmark operations
type CollectionRepository interface {
	Exists(ctx context.Context, postID, userID int64) (bool, error)
	Insert(ctx context.Context, postID, userID int64) (bool, error)
	Delete(ctx context.Context, postID, userID int64) (bool, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	ListPostsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Submission, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

type collectionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db, log: observability.NewRepoLogger("collections")}
}

func (r *collectionRepository) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("channel_message_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	if err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, database.ClassifyError(err)
	}
	return count > 0, nil
}

func (r *collectionRepository) Insert(ctx context.Context, postID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO collections (channel_message_id, user_id, timestamp)
		 VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (channel_message_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "insert")
		return false, database.ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		r.log.LogConflict(ctx, "insert")
	}
	return res.RowsAffected == 1, nil
}

func (r *collectionRepository) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("channel_message_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Collection{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return false, database.ClassifyError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *collectionRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("channel_message_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	return count, nil
}

// ListPostsByUser returns the posts a user collected, most recently collected first.
func (r *collectionRepository) ListPostsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Table("collections").
		Select("submissions.*").
		Joins("JOIN submissions ON submissions.channel_message_id = collections.channel_message_id").
		Where("collections.user_id = ?", userID).
		Order("collections.timestamp desc, collections.id desc").
		Limit(limit).
		Offset(offset).
		Scan(&submissions).Error
	if err != nil {
		r.log.LogError(ctx, err, "list_posts_by_user")
		return nil, database.ClassifyError(err)
	}
	return submissions, nil
}

func (r *collectionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("collections").
		Joins("JOIN submissions ON submissions.channel_message_id = collections.channel_message_id").
		Where("collections.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	return count, nil
}
