package service

import (
	"context"
	"testing"

	"channelpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleService_ReactionTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing *models.Reaction
		kind     models.ToggleKind
		want     models.Transition
	}{
		{"no row inserts", nil, models.ToggleLike, models.TransitionInserted},
		{"same value removes", &models.Reaction{ReactionType: models.ReactionLike}, models.ToggleLike, models.TransitionRemoved},
		{"opposite value switches", &models.Reaction{ReactionType: models.ReactionLike}, models.ToggleDislike, models.TransitionSwitched},
		{"dislike to like switches", &models.Reaction{ReactionType: models.ReactionDislike}, models.ToggleLike, models.TransitionSwitched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			repo := noopReactionRepo()
			repo.getFn = func(_ context.Context, _, _ int64) (*models.Reaction, error) { return tt.existing, nil }

			svc := NewToggleService(repo, noopCollectionRepo())
			got, err := svc.Toggle(context.Background(), 1, 2, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Transition)
			assert.Equal(t, tt.kind, got.Kind)
		})
	}
}

func TestToggleService_SwitchWritesRequestedValue(t *testing.T) {
	t.Parallel()

	repo := noopReactionRepo()
	repo.getFn = func(_ context.Context, _, _ int64) (*models.Reaction, error) {
		return &models.Reaction{ReactionType: models.ReactionDislike}, nil
	}
	var from, to int
	repo.switchFn = func(_ context.Context, _, _ int64, f, n int) (bool, error) {
		from, to = f, n
		return true, nil
	}

	_, err := NewToggleService(repo, noopCollectionRepo()).Toggle(context.Background(), 1, 2, models.ToggleLike)
	require.NoError(t, err)
	assert.Equal(t, models.ReactionDislike, from)
	assert.Equal(t, models.ReactionLike, to)
}

func TestToggleService_LostInsertIsReappliedOnce(t *testing.T) {
	t.Parallel()

	// First read sees nothing, the insert loses to a concurrent like, the
	// re-read sees that like and removes it.
	reads := 0
	repo := noopReactionRepo()
	repo.getFn = func(_ context.Context, _, _ int64) (*models.Reaction, error) {
		reads++
		if reads == 1 {
			return nil, nil
		}
		return &models.Reaction{ReactionType: models.ReactionLike}, nil
	}
	repo.insertFn = func(_ context.Context, _, _ int64, _ int) (bool, error) { return false, nil }

	got, err := NewToggleService(repo, noopCollectionRepo()).Toggle(context.Background(), 1, 2, models.ToggleLike)
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
	assert.Equal(t, models.TransitionRemoved, got.Transition)
}

func TestToggleService_PersistentConflictYieldsNone(t *testing.T) {
	t.Parallel()

	reads := 0
	repo := noopReactionRepo()
	repo.getFn = func(_ context.Context, _, _ int64) (*models.Reaction, error) {
		reads++
		return nil, nil
	}
	repo.insertFn = func(_ context.Context, _, _ int64, _ int) (bool, error) { return false, nil }

	got, err := NewToggleService(repo, noopCollectionRepo()).Toggle(context.Background(), 1, 2, models.ToggleLike)
	require.NoError(t, err)
	assert.Equal(t, 2, reads)
	assert.Equal(t, models.TransitionNone, got.Transition)
	_, notify := got.NotificationKind()
	assert.False(t, notify)
}

func TestToggleService_StoreUnavailablePropagates(t *testing.T) {
	t.Parallel()

	storeErr := models.NewStoreUnavailableError(context.DeadlineExceeded)
	repo := noopReactionRepo()
	repo.getFn = func(_ context.Context, _, _ int64) (*models.Reaction, error) { return nil, storeErr }

	_, err := NewToggleService(repo, noopCollectionRepo()).Toggle(context.Background(), 1, 2, models.ToggleLike)
	assert.ErrorIs(t, err, storeErr)
	assert.True(t, models.IsCode(err, models.CodeStoreUnavailable))
}

func TestToggleService_Collection(t *testing.T) {
	t.Parallel()

	t.Run("absent inserts", func(t *testing.T) {
		t.Parallel()
		got, err := NewToggleService(noopReactionRepo(), noopCollectionRepo()).
			Toggle(context.Background(), 1, 2, models.ToggleCollect)
		require.NoError(t, err)
		assert.Equal(t, models.TransitionInserted, got.Transition)
		kind, ok := got.NotificationKind()
		assert.True(t, ok)
		assert.Equal(t, models.NotifyCollect, kind)
	})

	t.Run("present removes", func(t *testing.T) {
		t.Parallel()
		repo := noopCollectionRepo()
		repo.existsFn = func(_ context.Context, _, _ int64) (bool, error) { return true, nil }
		got, err := NewToggleService(noopReactionRepo(), repo).
			Toggle(context.Background(), 1, 2, models.ToggleCollect)
		require.NoError(t, err)
		assert.Equal(t, models.TransitionRemoved, got.Transition)
		_, ok := got.NotificationKind()
		assert.False(t, ok)
	})
}

func TestToggleService_UnknownKind(t *testing.T) {
	t.Parallel()

	_, err := NewToggleService(noopReactionRepo(), noopCollectionRepo()).
		Toggle(context.Background(), 1, 2, models.ToggleKind("love"))
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
