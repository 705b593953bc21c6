// Package service holds the post-interaction engine: toggles, counters,
// thread rendering, promotion, notifications and render reconciliation.
package service

import (
	"context"
	"fmt"

	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/repository"
)

// ToggleService applies three-way like/dislike/collect toggles. Uniqueness
// per (post, user) is left to the store; a lost race is re-read once and
// applied against what the winner wrote.
type ToggleService struct {
	reactions   repository.ReactionRepository
	collections repository.CollectionRepository
}

func NewToggleService(reactions repository.ReactionRepository, collections repository.CollectionRepository) *ToggleService {
	return &ToggleService{reactions: reactions, collections: collections}
}

func (s *ToggleService) Toggle(ctx context.Context, postID, userID int64, kind models.ToggleKind) (models.ToggleResult, error) {
	var apply func(context.Context, int64, int64, models.ToggleKind) (models.Transition, error)
	switch kind {
	case models.ToggleLike, models.ToggleDislike:
		apply = s.toggleReaction
	case models.ToggleCollect:
		apply = s.toggleCollection
	default:
		return models.ToggleResult{}, models.NewValidationError(fmt.Sprintf("unknown toggle %q", kind))
	}

	transition, err := apply(ctx, postID, userID, kind)
	if err == nil && transition == models.TransitionNone {
		transition, err = apply(ctx, postID, userID, kind)
	}
	if err != nil {
		return models.ToggleResult{}, err
	}

	observability.ToggleTransitions.WithLabelValues(string(kind), string(transition)).Inc()
	return models.ToggleResult{Kind: kind, Transition: transition}, nil
}

func (s *ToggleService) toggleReaction(ctx context.Context, postID, userID int64, kind models.ToggleKind) (models.Transition, error) {
	want := kind.ReactionValue()

	existing, err := s.reactions.Get(ctx, postID, userID)
	if err != nil {
		return models.TransitionNone, err
	}

	var (
		written    bool
		transition models.Transition
	)
	switch {
	case existing == nil:
		written, err = s.reactions.Insert(ctx, postID, userID, want)
		transition = models.TransitionInserted
	case existing.ReactionType == want:
		written, err = s.reactions.DeleteIfValue(ctx, postID, userID, want)
		transition = models.TransitionRemoved
	default:
		written, err = s.reactions.SwitchValue(ctx, postID, userID, existing.ReactionType, want)
		transition = models.TransitionSwitched
	}
	if err != nil {
		return models.TransitionNone, err
	}
	if !written {
		return models.TransitionNone, nil
	}
	return transition, nil
}

func (s *ToggleService) toggleCollection(ctx context.Context, postID, userID int64, _ models.ToggleKind) (models.Transition, error) {
	exists, err := s.collections.Exists(ctx, postID, userID)
	if err != nil {
		return models.TransitionNone, err
	}

	if exists {
		removed, err := s.collections.Delete(ctx, postID, userID)
		if err != nil || !removed {
			return models.TransitionNone, err
		}
		return models.TransitionRemoved, nil
	}

	inserted, err := s.collections.Insert(ctx, postID, userID)
	if err != nil || !inserted {
		return models.TransitionNone, err
	}
	return models.TransitionInserted, nil
}
