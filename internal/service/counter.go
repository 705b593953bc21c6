package service

import (
	"context"

	"channelpost/internal/models"
	"channelpost/internal/repository"
)

// CounterService reads live interaction totals. Nothing is cached: the
// numbers go straight into button labels.
type CounterService struct {
	reactions   repository.ReactionRepository
	comments    repository.CommentRepository
	collections repository.CollectionRepository
}

func NewCounterService(
	reactions repository.ReactionRepository,
	comments repository.CommentRepository,
	collections repository.CollectionRepository,
) *CounterService {
	return &CounterService{reactions: reactions, comments: comments, collections: collections}
}

func (s *CounterService) Counts(ctx context.Context, postID int64) (models.Counts, error) {
	likes, dislikes, err := s.reactions.CountByPost(ctx, postID)
	if err != nil {
		return models.Counts{}, err
	}
	comments, err := s.comments.CountByPost(ctx, postID)
	if err != nil {
		return models.Counts{}, err
	}
	collections, err := s.collections.CountByPost(ctx, postID)
	if err != nil {
		return models.Counts{}, err
	}

	return models.Counts{
		Likes:       likes,
		Dislikes:    dislikes,
		Comments:    comments,
		Collections: collections,
	}, nil
}
