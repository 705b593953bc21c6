package repository

import (
	"context"
	"errors"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	ListByPostAndAuthor(ctx context.Context, postID, userID int64, own bool) ([]*models.Comment, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)
	DeleteWithReplies(ctx context.Context, id uint) (int64, error)
}

type commentRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db, log: observability.NewRepoLogger("comments")}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return database.ClassifyError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Comment", id)
	}
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	return &comment, nil
}

// ListByPost returns every comment of a post oldest first. The id breaks
// timestamp ties so that thread numbering is stable across renders.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "ListByPost", "comments")
	defer span.End()
	defer observability.TrackQuery("list", "comments")()

	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("channel_message_id = ?", postID).
		Order("timestamp asc, id asc").
		Find(&comments).Error
	if err != nil {
		r.log.LogError(ctx, err, "list_by_post")
		return nil, database.ClassifyError(err)
	}
	return comments, nil
}

// ListByPostAndAuthor returns a user's own comments (own=true) or everyone
// else's (own=false) on a post, newest first.
func (r *commentRepository) ListByPostAndAuthor(ctx context.Context, postID, userID int64, own bool) ([]*models.Comment, error) {
	query := r.db.WithContext(ctx).Where("channel_message_id = ?", postID)
	if own {
		query = query.Where("user_id = ?", userID)
	} else {
		query = query.Where("user_id <> ?", userID)
	}

	var comments []*models.Comment
	if err := query.Order("timestamp desc, id desc").Find(&comments).Error; err != nil {
		r.log.LogError(ctx, err, "list_by_author")
		return nil, database.ClassifyError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("channel_message_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	return count, nil
}

// DeleteWithReplies removes a comment and, for a top-level comment, its replies.
// It returns the number of rows removed.
func (r *commentRepository) DeleteWithReplies(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? OR parent_id = ?", id, id).Delete(&models.Comment{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return 0, database.ClassifyError(res.Error)
	}
	return res.RowsAffected, nil
}
