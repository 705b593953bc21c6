package repository

import (
	"context"
	"errors"

	"channelpost/internal/database"
	"channelpost/internal/models"
	"channelpost/internal/observability"

	"gorm.io/gorm"
)

// ReactionRepository defines the like/dislike axis. Every write is
// conditional so that racing toggles for one (post, user) never produce a
// second row; a false result means another writer got there first.
type ReactionRepository interface {
	Get(ctx context.Context, postID, userID int64) (*models.Reaction, error)
	Insert(ctx context.Context, postID, userID int64, value int) (bool, error)
	DeleteIfValue(ctx context.Context, postID, userID int64, value int) (bool, error)
	SwitchValue(ctx context.Context, postID, userID int64, from, to int) (bool, error)
	CountByPost(ctx context.Context, postID int64) (likes, dislikes int64, err error)
}

type reactionRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReactionRepository creates a new ReactionRepository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db, log: observability.NewRepoLogger("reactions")}
}

// Get returns nil without error when the user has no reaction on the post.
func (r *reactionRepository) Get(ctx context.Context, postID, userID int64) (*models.Reaction, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Get", "reactions")
	defer span.End()
	defer observability.TrackQuery("get", "reactions")()

	var reaction models.Reaction
	err := r.db.WithContext(ctx).
		Where("channel_message_id = ? AND user_id = ?", postID, userID).
		Take(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.log.LogError(ctx, err, "get")
		return nil, database.ClassifyError(err)
	}
	return &reaction, nil
}

func (r *reactionRepository) Insert(ctx context.Context, postID, userID int64, value int) (bool, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Insert", "reactions")
	defer span.End()
	defer observability.TrackQuery("insert", "reactions")()

	// ON CONFLICT DO NOTHING lets the unique index arbitrate concurrent inserts.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO reactions (channel_message_id, user_id, reaction_type, timestamp)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (channel_message_id, user_id) DO NOTHING`,
		postID, userID, value,
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

func (r *reactionRepository) DeleteIfValue(ctx context.Context, postID, userID int64, value int) (bool, error) {
	defer observability.TrackQuery("delete", "reactions")()

	res := r.db.WithContext(ctx).
		Where("channel_message_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, value).
		Delete(&models.Reaction{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return false, database.ClassifyError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *reactionRepository) SwitchValue(ctx context.Context, postID, userID int64, from, to int) (bool, error) {
	defer observability.TrackQuery("update", "reactions")()

	res := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("channel_message_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, from).
		Update("reaction_type", to)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "switch")
		return false, database.ClassifyError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *reactionRepository) CountByPost(ctx context.Context, postID int64) (int64, int64, error) {
	defer observability.TrackQuery("count", "reactions")()

	var rows []struct {
		ReactionType int
		Count        int64
	}
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Select("reaction_type, COUNT(*) AS count").
		Where("channel_message_id = ?", postID).
		Group("reaction_type").
		Scan(&rows).Error
	if err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, 0, database.ClassifyError(err)
	}

	var likes, dislikes int64
	for _, row := range rows {
		switch row.ReactionType {
		case models.ReactionLike:
			likes = row.Count
		case models.ReactionDislike:
			dislikes = row.Count
		}
	}
	return likes, dislikes, nil
}
