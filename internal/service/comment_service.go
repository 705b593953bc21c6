package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/repository"
)

const maxCommentRunes = 1000

// SessionStore keeps the pending private-chat workflow of each user.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*models.Session, error)
	Put(ctx context.Context, userID int64, session *models.Session) error
	Clear(ctx context.Context, userID int64) error
}

// Rerenderer redraws a post after a change made outside the channel.
type Rerenderer interface {
	Rerender(ctx context.Context, postID int64) (RenderOutcome, error)
}

// MenuEntry is one numbered line of the delete menu.
type MenuEntry struct {
	Number  int
	Comment *models.Comment
}

// DeleteMenu lists the comments a user may delete on one post. Numbering
// runs on from Own into Others.
type DeleteMenu struct {
	PostID   int64
	IsAuthor bool
	Own      []MenuEntry
	Others   []MenuEntry
}

// Size is the highest number in the menu.
func (m *DeleteMenu) Size() int {
	return len(m.Own) + len(m.Others)
}

// CommentDeletion is the outcome of deleting by menu number, with the menu
// rebuilt for the next round.
type CommentDeletion struct {
	Comment *models.Comment
	Removed int64
	Menu    *DeleteMenu
}

type CommentService struct {
	comments    repository.CommentRepository
	submissions repository.SubmissionRepository
	sessions    SessionStore
	notifier    *NotificationDispatcher
	renderer    Rerenderer
}

func NewCommentService(
	comments repository.CommentRepository,
	submissions repository.SubmissionRepository,
	sessions SessionStore,
	notifier *NotificationDispatcher,
	renderer Rerenderer,
) *CommentService {
	return &CommentService{
		comments:    comments,
		submissions: submissions,
		sessions:    sessions,
		notifier:    notifier,
		renderer:    renderer,
	}
}

// StartComment opens a pending comment on postID. A reply to a reply is
// attached to that reply's top-level comment.
func (s *CommentService) StartComment(ctx context.Context, userID, postID int64, parentID *uint) (*models.Session, error) {
	if _, err := s.submissions.GetByMessageID(ctx, postID); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.ChannelMessageID != postID {
			return nil, models.NewValidationError("Comment belongs to another post")
		}
		if !parent.IsTopLevel() {
			parentID = parent.ParentID
		}
	}

	session := &models.Session{Kind: models.SessionComment, PostID: postID, ParentID: parentID}
	if err := s.sessions.Put(ctx, userID, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitComment stores text as the pending comment, tells the post author
// and redraws the post. Notification and redraw failures are only logged.
func (s *CommentService) SubmitComment(ctx context.Context, actor Actor, session *models.Session, text string) (*models.Comment, error) {
	if session == nil || session.Kind != models.SessionComment {
		return nil, models.NewValidationError("No comment in progress")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment is empty")
	}
	if utf8.RuneCountInString(text) > maxCommentRunes {
		return nil, models.NewValidationError(fmt.Sprintf("Comment too long (max %d characters)", maxCommentRunes))
	}

	post, err := s.submissions.GetByMessageID(ctx, session.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ChannelMessageID: post.ChannelMessageID,
		UserID:           actor.ID,
		UserName:         actor.Name,
		CommentText:      text,
		ParentID:         session.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(ctx, actor.ID); err != nil {
		observability.Logger.WarnContext(ctx, "Failed to clear session", slog.String("error", err.Error()))
	}

	s.notifier.Dispatch(ctx, Notice{
		AuthorID:  post.UserID,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		PostID:    post.ChannelMessageID,
		Preview:   post.ContentText,
		Kind:      models.NotifyComment,
		Comment:   text,
	})
	s.rerender(ctx, post.ChannelMessageID)

	return comment, nil
}

// OpenDeleteMenu lists the caller's comments newest first and, for the post
// author, everyone else's after them. The numbering is kept in the session.
func (s *CommentService) OpenDeleteMenu(ctx context.Context, userID, postID int64) (*DeleteMenu, error) {
	post, err := s.submissions.GetByMessageID(ctx, postID)
	if err != nil {
		return nil, err
	}

	menu := &DeleteMenu{PostID: postID, IsAuthor: post.UserID == userID}
	numbers := make(map[int]uint)

	own, err := s.comments.ListByPostAndAuthor(ctx, postID, userID, true)
	if err != nil {
		return nil, err
	}
	for _, c := range own {
		n := len(numbers) + 1
		numbers[n] = c.ID
		menu.Own = append(menu.Own, MenuEntry{Number: n, Comment: c})
	}

	if menu.IsAuthor {
		others, err := s.comments.ListByPostAndAuthor(ctx, postID, userID, false)
		if err != nil {
			return nil, err
		}
		for _, c := range others {
			n := len(numbers) + 1
			numbers[n] = c.ID
			menu.Others = append(menu.Others, MenuEntry{Number: n, Comment: c})
		}
	}

	session := &models.Session{Kind: models.SessionDeleteComment, PostID: postID, Menu: numbers}
	if err := s.sessions.Put(ctx, userID, session); err != nil {
		return nil, err
	}
	return menu, nil
}

// DeleteByNumber deletes the comment shown under number. The caller must be
// the comment's author or the post's author, checked against the store
// rather than the menu. Replies go with their top-level comment.
func (s *CommentService) DeleteByNumber(ctx context.Context, userID int64, session *models.Session, number int) (*CommentDeletion, error) {
	if session == nil || session.Kind != models.SessionDeleteComment {
		return nil, models.NewValidationError("No delete menu open")
	}

	id, ok := session.Menu[number]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("No comment numbered %d", number))
	}

	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.ChannelMessageID != session.PostID {
		return nil, models.NewValidationError("Comment belongs to another post")
	}

	post, err := s.submissions.GetByMessageID(ctx, comment.ChannelMessageID)
	if err != nil {
		return nil, err
	}
	if userID != comment.UserID && userID != post.UserID {
		return nil, models.NewUnauthorizedError("You can only delete your own comments")
	}

	removed, err := s.comments.DeleteWithReplies(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	s.rerender(ctx, post.ChannelMessageID)

	menu, err := s.OpenDeleteMenu(ctx, userID, post.ChannelMessageID)
	if err != nil {
		return nil, err
	}
	return &CommentDeletion{Comment: comment, Removed: removed, Menu: menu}, nil
}

func (s *CommentService) rerender(ctx context.Context, postID int64) {
	if s.renderer == nil {
		return
	}
	if _, err := s.renderer.Rerender(ctx, postID); err != nil {
		observability.Logger.WarnContext(ctx, "Post redraw failed", slog.String("error", err.Error()))
	}
}
