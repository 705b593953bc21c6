package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"channelpost/internal/cache"
	"channelpost/internal/events"
	"channelpost/internal/gateway"
	"channelpost/internal/models"
	"channelpost/internal/repository"
	"channelpost/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testPostID = int64(500)
	testAuthor = int64(1)
)

type engine struct {
	db       *gorm.DB
	gw       *testutil.GatewayFake
	views    *cache.ViewStateStore
	sessions *cache.SessionStore
	events   *InteractionService
	comments *CommentService
	library  *LibraryService
}

func newEngine(t *testing.T, threshold int64) *engine {
	t.Helper()

	db := testutil.OpenSQLite(t)
	gw := testutil.NewGatewayFake()
	views, sessions := memoryStates(t)

	submissions := repository.NewSubmissionRepository(db)
	reactions := repository.NewReactionRepository(db)
	collections := repository.NewCollectionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	pins := repository.NewPinRepository(db)

	notifier := NewNotificationDispatcher(gw, repository.NewNotificationRepository(db), testLinks)
	interactions := NewInteractionService(InteractionDeps{
		Submissions: submissions,
		Pins:        pins,
		Toggles:     NewToggleService(reactions, collections),
		Counter:     NewCounterService(reactions, commentRepo, collections),
		Threads:     NewThreadBuilder(commentRepo, testLinks, 0),
		Watcher:     NewPinWatcher(pins, gw, notifier, threshold),
		Notifier:    notifier,
		Surfaces:    NewSurfaceBuilder(testLinks),
		Reconciler:  NewRenderReconciler(gw),
		Views:       views,
	})

	return &engine{
		db:       db,
		gw:       gw,
		views:    views,
		sessions: sessions,
		events:   interactions,
		comments: NewCommentService(commentRepo, submissions, sessions, notifier, interactions),
		library:  NewLibraryService(submissions, collections, gw, sessions, views),
	}
}

func (e *engine) handle(t *testing.T, data string, userID int64) *EventResult {
	t.Helper()
	ev, err := events.ParseCallback(data)
	require.NoError(t, err)
	res, err := e.events.HandleEvent(context.Background(), EventInput{
		Event: ev,
		Actor: Actor{ID: userID, Name: "reader"},
	})
	require.NoError(t, err)
	return res
}

func (e *engine) reactionRows(t *testing.T, postID, userID int64) []models.Reaction {
	t.Helper()
	var rows []models.Reaction
	require.NoError(t, e.db.Where("channel_message_id = ? AND user_id = ?", postID, userID).Find(&rows).Error)
	return rows
}

func TestEngine_LikeToggleIdempotence(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)
	like := events.ReactData(testPostID, models.ToggleLike)

	first := e.handle(t, like, 2)
	assert.Equal(t, models.TransitionInserted, first.Toggle.Transition)
	assert.Len(t, e.reactionRows(t, testPostID, 2), 1)
	assert.True(t, first.Notified)

	second := e.handle(t, like, 2)
	assert.Equal(t, models.TransitionRemoved, second.Toggle.Transition)
	assert.Empty(t, e.reactionRows(t, testPostID, 2))
	assert.False(t, second.Notified)

	third := e.handle(t, like, 2)
	assert.Equal(t, models.TransitionInserted, third.Toggle.Transition)
	assert.Len(t, e.reactionRows(t, testPostID, 2), 1)

	// Re-liking does not notify the author a second time.
	assert.False(t, third.Notified)
	assert.Len(t, e.gw.MessagesTo(testAuthor), 1)
}

func TestEngine_LikeThenDislikeSwitches(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	e.handle(t, events.ReactData(testPostID, models.ToggleLike), 2)
	res := e.handle(t, events.ReactData(testPostID, models.ToggleDislike), 2)

	assert.Equal(t, models.TransitionSwitched, res.Toggle.Transition)
	rows := e.reactionRows(t, testPostID, 2)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ReactionDislike, rows[0].ReactionType)

	layout := e.gw.LastEdit().Layout
	assert.Equal(t, "👍 0", layout[0][0].Text)
	assert.Equal(t, "👎 1", layout[0][1].Text)
}

func TestEngine_FirstLikeRendersAndNotifies(t *testing.T) {
	e := newEngine(t, 100)
	post := testutil.SeedPost(t, e.db, testPostID, testAuthor)

	res := e.handle(t, events.ReactData(testPostID, models.ToggleLike), 2)
	assert.Equal(t, RenderEdited, res.Render)

	edit := e.gw.LastEdit()
	assert.Equal(t, testPostID, edit.PostID)
	assert.Equal(t, "👍 1", edit.Layout[0][0].Text)
	assert.Equal(t, "react:like:500", edit.Layout[0][0].Data)
	assert.Equal(t, "💬 0", edit.Layout[1][0].Text)
	assert.True(t, strings.HasPrefix(edit.Caption, escape(post.ContentText)))
	assert.Contains(t, edit.Caption, "👤 Author:")

	msgs := e.gw.MessagesTo(testAuthor)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "liked your post")
}

func TestEngine_SelfInteractionsNotNotified(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	e.handle(t, events.ReactData(testPostID, models.ToggleLike), testAuthor)
	e.handle(t, events.CollectData(testPostID), testAuthor)

	assert.Empty(t, e.gw.Messages)
}

func TestEngine_CountsMatchRows(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	e.handle(t, events.ReactData(testPostID, models.ToggleLike), 2)
	e.handle(t, events.ReactData(testPostID, models.ToggleLike), 3)
	e.handle(t, events.ReactData(testPostID, models.ToggleDislike), 4)
	e.handle(t, events.CollectData(testPostID), 2)
	e.handle(t, events.CollectData(testPostID), 3)
	e.handle(t, events.CollectData(testPostID), 3)

	layout := e.gw.LastEdit().Layout
	assert.Equal(t, "👍 2", layout[0][0].Text)
	assert.Equal(t, "👎 1", layout[0][1].Text)
	assert.Equal(t, "⭐ 1", layout[0][2].Text)
}

func TestEngine_ConcurrentLikesPinOnce(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	var wg sync.WaitGroup
	errs := make(chan error, 150)
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := e.events.HandleEvent(context.Background(), EventInput{
				Event: events.Event{Action: events.ActionReact, Sub: string(models.ToggleLike), PostID: testPostID},
				Actor: Actor{ID: userID, Name: "fan"},
			})
			errs <- err
		}(int64(1000 + i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var pins []models.PinnedPost
	require.NoError(t, e.db.Find(&pins).Error)
	require.Len(t, pins, 1)
	assert.Equal(t, int64(100), pins[0].LikeCountAtPin)
	assert.Equal(t, 1, e.gw.PinCount())

	var promotions int
	for _, m := range e.gw.MessagesTo(testAuthor) {
		if strings.Contains(m.Text, "Your post is trending") {
			promotions++
		}
	}
	assert.Equal(t, 1, promotions)

	var likes int64
	require.NoError(t, e.db.Model(&models.Reaction{}).Where("channel_message_id = ?", testPostID).Count(&likes).Error)
	assert.Equal(t, int64(150), likes)
}

func TestEngine_ConcurrentDoubleClickKeepsOneRow(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.events.HandleEvent(context.Background(), EventInput{
				Event: events.Event{Action: events.ActionCollect, PostID: testPostID},
				Actor: Actor{ID: 2, Name: "clicker"},
			})
		}()
	}
	wg.Wait()

	var rows int64
	require.NoError(t, e.db.Model(&models.Collection{}).Where("user_id = ?", 2).Count(&rows).Error)
	assert.LessOrEqual(t, rows, int64(1))
	assert.LessOrEqual(t, len(e.gw.MessagesTo(testAuthor)), 1)
}

func TestEngine_PinnedCaptionPrefix(t *testing.T) {
	e := newEngine(t, 2)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	e.handle(t, events.ReactData(testPostID, models.ToggleLike), 2)
	assert.False(t, strings.HasPrefix(e.gw.LastEdit().Caption, pinnedPrefix))

	res := e.handle(t, events.ReactData(testPostID, models.ToggleLike), 3)
	assert.True(t, res.Promoted)
	assert.True(t, strings.HasPrefix(e.gw.LastEdit().Caption, pinnedPrefix))

	// Unliking below the threshold does not unpin.
	e.handle(t, events.ReactData(testPostID, models.ToggleLike), 3)
	assert.True(t, strings.HasPrefix(e.gw.LastEdit().Caption, pinnedPrefix))
	assert.Equal(t, 1, e.gw.PinCount())
}

func TestEngine_RenderNoOp(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	show := events.CommentData(testPostID, events.CommentShow)
	assert.Equal(t, RenderEdited, e.handle(t, show, 2).Render)
	assert.Equal(t, RenderUnchanged, e.handle(t, show, 2).Render)
	assert.Equal(t, RenderUnchanged, e.handle(t, events.CommentData(testPostID, events.CommentRefresh), 3).Render)
	assert.Equal(t, 1, e.gw.EditCount())
}

func TestEngine_ViewModeTransitions(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)
	ctx := context.Background()

	res := e.handle(t, events.CommentData(testPostID, events.CommentShow), 2)
	assert.Equal(t, models.ViewExpanded, res.State.Mode)
	edit := e.gw.LastEdit()
	assert.Contains(t, edit.Caption, "No comments yet")
	assert.Equal(t, "✍️ Comment", edit.Layout[0][0].Text)
	assert.Equal(t, "https://t.me/postbot?start=comment_500", edit.Layout[0][0].URL)
	assert.Equal(t, "https://t.me/postbot?start=manage_comments_500", edit.Layout[0][1].URL)
	assert.Equal(t, "comment:hide:500", edit.Layout[1][0].Data)

	// Reacting keeps the expanded mode.
	res = e.handle(t, events.ReactData(testPostID, models.ToggleLike), 2)
	assert.Equal(t, models.ViewExpanded, res.State.Mode)

	res, err := e.events.HandleEvent(ctx, EventInput{
		Event: events.Event{Action: events.ActionThreadExpand, PostID: testPostID, CommentID: 9},
		Actor: Actor{ID: 2},
	})
	require.NoError(t, err)
	require.NotNil(t, res.State.ExpandedID)
	assert.Equal(t, uint(9), *res.State.ExpandedID)

	stored, found, err := e.views.Get(ctx, testPostID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, uint(9), *stored.ExpandedID)

	res, err = e.events.HandleEvent(ctx, EventInput{
		Event: events.Event{Action: events.ActionThreadCollapse, PostID: testPostID},
		Actor: Actor{ID: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ViewExpanded, res.State.Mode)
	assert.Nil(t, res.State.ExpandedID)

	res = e.handle(t, events.CommentData(testPostID, events.CommentHide), 2)
	assert.Equal(t, models.ViewCollapsed, res.State.Mode)
	assert.Equal(t, "👍 1", e.gw.LastEdit().Layout[0][0].Text)
	assert.NotContains(t, e.gw.LastEdit().Caption, CommentSectionMarker)
}

func TestEngine_InfersModeWithoutState(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)

	res, err := e.events.HandleEvent(context.Background(), EventInput{
		Event:            events.Event{Action: events.ActionCollect, PostID: testPostID},
		Actor:            Actor{ID: 2},
		DisplayedCaption: "text\n\n" + CommentSectionMarker + " (3)\n1. a",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ViewExpanded, res.State.Mode)
}

func TestEngine_RerenderUsesPersistedMode(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)
	ctx := context.Background()

	e.handle(t, events.CommentData(testPostID, events.CommentShow), 2)
	seedComment(t, e.db, testPostID, 3, "fresh", nil, 1)

	outcome, err := e.events.Rerender(ctx, testPostID)
	require.NoError(t, err)
	assert.Equal(t, RenderEdited, outcome)
	assert.Contains(t, e.gw.LastEdit().Caption, CommentSectionMarker+" (1)")

	// A post with no stored state is drawn as never opened.
	require.NoError(t, e.views.Forget(ctx, testPostID))
	seedComment(t, e.db, testPostID, 4, "later", nil, 2)

	_, err = e.events.Rerender(ctx, testPostID)
	require.NoError(t, err)
	assert.NotContains(t, e.gw.LastEdit().Caption, CommentSectionMarker)
	assert.Equal(t, "💬 2", e.gw.LastEdit().Layout[1][0].Text)
}

func TestEngine_EditFailureKeepsStoreChange(t *testing.T) {
	e := newEngine(t, 100)
	testutil.SeedPost(t, e.db, testPostID, testAuthor)
	e.gw.EditResult = gateway.ResultRateLimited

	ev, err := events.ParseCallback(events.ReactData(testPostID, models.ToggleLike))
	require.NoError(t, err)
	res, err := e.events.HandleEvent(context.Background(), EventInput{Event: ev, Actor: Actor{ID: 2}})
	assert.True(t, models.IsCode(err, models.CodeGatewayRejected))
	require.NotNil(t, res)
	assert.Equal(t, RenderFailed, res.Render)
	assert.Len(t, e.reactionRows(t, testPostID, 2), 1)

	stored, found, err := e.views.Get(context.Background(), testPostID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, stored.Displayed)

	// The next event heals the stale surface.
	e.gw.EditResult = gateway.ResultOK
	res = e.handle(t, events.CollectData(testPostID), 3)
	assert.Equal(t, RenderEdited, res.Render)
	assert.Equal(t, "👍 1", e.gw.LastEdit().Layout[0][0].Text)
}

func TestEngine_UnknownPost(t *testing.T) {
	e := newEngine(t, 100)

	_, err := e.events.HandleEvent(context.Background(), EventInput{
		Event: events.Event{Action: events.ActionReact, Sub: "like", PostID: 404},
		Actor: Actor{ID: 2},
	})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	assert.Equal(t, 0, e.gw.EditCount())
}
