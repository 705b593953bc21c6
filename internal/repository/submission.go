// Package repository provides the data access layer of the interaction engine.
package repository

import (
	"context"
	"errors"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// SubmissionRepository defines interface for published post operations
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByMessageID(ctx context.Context, postID int64) (*models.Submission, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Submission, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteCascade(ctx context.Context, postID int64) error
}

type submissionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db, log: observability.NewRepoLogger("submissions")}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return database.ClassifyError(err)
	}
	return nil
}

func (r *submissionRepository) GetByMessageID(ctx context.Context, postID int64) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).Where("channel_message_id = ?", postID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		r.log.LogError(ctx, err, "get")
		return nil, database.ClassifyError(err)
	}
	return &submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Submission, error) {
	var submissions []*models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&submissions).Error
	if err != nil {
		r.log.LogError(ctx, err, "list_by_user")
		return nil, database.ClassifyError(err)
	}
	return submissions, nil
}

func (r *submissionRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Submission{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, database.ClassifyError(err)
	}
	return count, nil
}

// DeleteCascade removes a post together with every row that references it.
func (r *submissionRepository) DeleteCascade(ctx context.Context, postID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.Comment{},
			&models.Reaction{},
			&models.Collection{},
			&models.PinnedPost{},
			&models.Notification{},
		} {
			if err := tx.Where("channel_message_id = ?", postID).Delete(model).Error; err != nil {
				return err
			}
		}
		res := tx.Where("channel_message_id = ?", postID).Delete(&models.Submission{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		r.log.LogError(ctx, err, "delete_cascade")
		return database.ClassifyError(err)
	}
	return nil
}
