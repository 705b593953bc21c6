package service

import (
	"context"
	"log/slog"

	"channelpost/internal/events"
	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ViewStates persists the render state of each post.
type ViewStates interface {
	Get(ctx context.Context, postID int64) (models.ViewState, bool, error)
	Put(ctx context.Context, postID int64, state models.ViewState) error
	Forget(ctx context.Context, postID int64) error
}

// Actor is the user behind an event.
type Actor struct {
	ID   int64
	Name string
}

// EventInput is one inbound channel interaction.
type EventInput struct {
	Event events.Event
	Actor Actor
	// DisplayedCaption is the caption text the client showed, used only to
	// infer the view mode when no state was persisted.
	DisplayedCaption string
}

// EventResult summarises what handling an event did.
type EventResult struct {
	Toggle   *models.ToggleResult
	Notified bool
	Promoted bool
	State    models.ViewState
	Render   RenderOutcome
}

// InteractionService runs one event end to end: toggle or view change,
// recount, promotion, notification and reconciliation.
type InteractionService struct {
	submissions repository.SubmissionRepository
	pins        repository.PinRepository
	toggles     *ToggleService
	counter     *CounterService
	threads     *ThreadBuilder
	watcher     *PinWatcher
	notifier    *NotificationDispatcher
	surfaces    *SurfaceBuilder
	reconciler  *RenderReconciler
	views       ViewStates
}

// InteractionDeps groups the collaborators of InteractionService.
type InteractionDeps struct {
	Submissions repository.SubmissionRepository
	Pins        repository.PinRepository
	Toggles     *ToggleService
	Counter     *CounterService
	Threads     *ThreadBuilder
	Watcher     *PinWatcher
	Notifier    *NotificationDispatcher
	Surfaces    *SurfaceBuilder
	Reconciler  *RenderReconciler
	Views       ViewStates
}

func NewInteractionService(deps InteractionDeps) *InteractionService {
	return &InteractionService{
		submissions: deps.Submissions,
		pins:        deps.Pins,
		toggles:     deps.Toggles,
		counter:     deps.Counter,
		threads:     deps.Threads,
		watcher:     deps.Watcher,
		notifier:    deps.Notifier,
		surfaces:    deps.Surfaces,
		reconciler:  deps.Reconciler,
		views:       deps.Views,
	}
}

// HandleEvent applies one interaction. Store errors are returned; a failed
// edit is reported in the result and as a GatewayRejected error, after the
// store change has been kept.
func (s *InteractionService) HandleEvent(ctx context.Context, in EventInput) (*EventResult, error) {
	span, ctx := observability.NewSpan(ctx, "event."+string(in.Event.Action),
		attribute.Int64("post.id", in.Event.PostID),
		attribute.Int64("user.id", in.Actor.ID),
	)
	defer span.End()

	result, err := s.handle(ctx, in)
	outcome := "error"
	if result != nil {
		outcome = string(result.Render)
	}
	observability.EventsTotal.WithLabelValues(string(in.Event.Action), outcome).Inc()
	span.SetError(err)
	return result, err
}

func (s *InteractionService) handle(ctx context.Context, in EventInput) (*EventResult, error) {
	postID := in.Event.PostID
	post, err := s.submissions.GetByMessageID(ctx, postID)
	if err != nil {
		return nil, err
	}

	state := s.loadState(ctx, postID, in.DisplayedCaption)
	displayed := state.Displayed
	res := &EventResult{}

	switch in.Event.Action {
	case events.ActionReact, events.ActionCollect:
		kind, _ := in.Event.ToggleKind()
		toggle, err := s.toggles.Toggle(ctx, postID, in.Actor.ID, kind)
		if err != nil {
			return nil, err
		}
		res.Toggle = &toggle

		if notifyKind, ok := toggle.NotificationKind(); ok {
			res.Notified = s.notifier.Dispatch(ctx, Notice{
				AuthorID:  post.UserID,
				ActorID:   in.Actor.ID,
				ActorName: in.Actor.Name,
				PostID:    postID,
				Preview:   post.ContentText,
				Kind:      notifyKind,
			})
		}
		if toggle.ProducesLike() {
			counts, err := s.counter.Counts(ctx, postID)
			if err != nil {
				return nil, err
			}
			if res.Promoted, err = s.watcher.Observe(ctx, post, counts.Likes); err != nil {
				return nil, err
			}
		}

	case events.ActionComment:
		switch in.Event.Sub {
		case events.CommentShow, events.CommentRefresh:
			state = models.ExpandedState(nil)
		case events.CommentHide:
			state = models.CollapsedState()
		default:
			return nil, models.NewInvalidEventError(in.Event.Sub)
		}

	case events.ActionThreadExpand:
		cid := in.Event.CommentID
		state = models.ExpandedState(&cid)

	case events.ActionThreadCollapse:
		state = models.ExpandedState(nil)

	default:
		return nil, models.NewInvalidEventError(string(in.Event.Action))
	}

	// A mode change keeps what is on screen so an identical result is still a no-op.
	state.Displayed = displayed
	res.State = state
	res.Render, err = s.render(ctx, post, state)
	return res, err
}

// Rerender redraws a post in its current mode, after changes made outside
// the channel such as a new or deleted comment. Without stored state the
// post is drawn collapsed.
func (s *InteractionService) Rerender(ctx context.Context, postID int64) (RenderOutcome, error) {
	post, err := s.submissions.GetByMessageID(ctx, postID)
	if err != nil {
		return RenderFailed, err
	}
	return s.render(ctx, post, s.loadState(ctx, postID, ""))
}

func (s *InteractionService) render(ctx context.Context, post *models.Submission, state models.ViewState) (RenderOutcome, error) {
	postID := post.ChannelMessageID

	counts, err := s.counter.Counts(ctx, postID)
	if err != nil {
		return RenderFailed, err
	}
	pinned, err := s.pins.Exists(ctx, postID)
	if err != nil {
		return RenderFailed, err
	}

	var thread string
	if state.Mode == models.ViewExpanded {
		budget := s.surfaces.ThreadBudget(post, pinned)
		if thread, _, err = s.threads.Build(ctx, postID, state.ExpandedID, budget); err != nil {
			return RenderFailed, err
		}
	}

	target := s.surfaces.Build(post, pinned, counts, state, thread)
	outcome, renderErr := s.reconciler.Reconcile(ctx, postID, state.Displayed, target)

	next := models.ViewState{Mode: state.Mode, ExpandedID: state.ExpandedID}
	if renderErr == nil {
		next.Displayed = &target
	}
	if err := s.views.Put(ctx, postID, next); err != nil {
		observability.Logger.WarnContext(ctx, "Failed to persist view state", slog.String("error", err.Error()))
	}

	if renderErr != nil {
		observability.Logger.WarnContext(ctx, "Post surface not updated", slog.String("error", renderErr.Error()))
	}
	return outcome, renderErr
}

func (s *InteractionService) loadState(ctx context.Context, postID int64, displayedCaption string) models.ViewState {
	state, found, err := s.views.Get(ctx, postID)
	if err != nil {
		observability.Logger.WarnContext(ctx, "View state unavailable, inferring", slog.String("error", err.Error()))
	}
	if found {
		return state
	}
	if InferMode(displayedCaption) == models.ViewExpanded {
		return models.ExpandedState(nil)
	}
	return models.CollapsedState()
}
