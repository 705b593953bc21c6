package service

import (
	"context"
	"fmt"
	"log/slog"

	"channelpost/internal/gateway"
	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/repository"
)

// LibraryPageSize is the number of posts per library page.
const LibraryPageSize = 10

// LibraryPage is one page of a user's posts or collections, newest first.
type LibraryPage struct {
	Items      []*models.Submission
	Page       int
	TotalPages int
	Total      int64
}

// Offset is the zero-based position of the first item on the page.
func (p *LibraryPage) Offset() int {
	return (p.Page - 1) * LibraryPageSize
}

// PostDeletion is the outcome of deleting one of the user's posts.
type PostDeletion struct {
	Post *models.Submission
	// ChannelDeleted is false when the channel refused to remove the
	// message, for example because it is too old.
	ChannelDeleted bool
}

type LibraryService struct {
	submissions repository.SubmissionRepository
	collections repository.CollectionRepository
	gateway     gateway.ChannelGateway
	sessions    SessionStore
	views       ViewStates
}

func NewLibraryService(
	submissions repository.SubmissionRepository,
	collections repository.CollectionRepository,
	gw gateway.ChannelGateway,
	sessions SessionStore,
	views ViewStates,
) *LibraryService {
	return &LibraryService{
		submissions: submissions,
		collections: collections,
		gateway:     gw,
		sessions:    sessions,
		views:       views,
	}
}

func (s *LibraryService) Posts(ctx context.Context, userID int64, page int) (*LibraryPage, error) {
	total, err := s.submissions.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := newPage(total, page)
	if total == 0 {
		return p, nil
	}
	p.Items, err = s.submissions.ListByUser(ctx, userID, LibraryPageSize, p.Offset())
	return p, err
}

func (s *LibraryService) Collections(ctx context.Context, userID int64, page int) (*LibraryPage, error) {
	total, err := s.collections.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := newPage(total, page)
	if total == 0 {
		return p, nil
	}
	p.Items, err = s.collections.ListPostsByUser(ctx, userID, LibraryPageSize, p.Offset())
	return p, err
}

// StartDeletePost shows a page of the user's posts and remembers which post
// each number on it refers to.
func (s *LibraryService) StartDeletePost(ctx context.Context, userID int64, page int) (*LibraryPage, error) {
	p, err := s.Posts(ctx, userID, page)
	if err != nil {
		return nil, err
	}

	numbers := make(map[int]int64, len(p.Items))
	for i, post := range p.Items {
		numbers[i+1] = post.ChannelMessageID
	}
	session := &models.Session{Kind: models.SessionDeletePost, Page: p.Page, Posts: numbers}
	if err := s.sessions.Put(ctx, userID, session); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePostByNumber removes the channel message and then the post with all
// its comments, reactions, collections, pin and notification rows.
func (s *LibraryService) DeletePostByNumber(ctx context.Context, userID int64, session *models.Session, number int) (*PostDeletion, error) {
	if session == nil || session.Kind != models.SessionDeletePost {
		return nil, models.NewValidationError("No delete in progress")
	}
	postID, ok := session.Posts[number]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("No post numbered %d on this page", number))
	}

	post, err := s.submissions.GetByMessageID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, models.NewUnauthorizedError("You can only delete your own posts")
	}

	result, gwErr := s.gateway.DeleteMessage(ctx, postID)
	if result != gateway.ResultOK {
		observability.Logger.WarnContext(ctx, "Channel message not deleted",
			slog.String("result", string(result)),
			slog.Any("error", gwErr),
		)
	}

	if err := s.submissions.DeleteCascade(ctx, postID); err != nil {
		return nil, err
	}
	if err := s.views.Forget(ctx, postID); err != nil {
		observability.Logger.WarnContext(ctx, "Failed to drop view state", slog.String("error", err.Error()))
	}
	if err := s.sessions.Clear(ctx, userID); err != nil {
		observability.Logger.WarnContext(ctx, "Failed to clear session", slog.String("error", err.Error()))
	}

	return &PostDeletion{Post: post, ChannelDeleted: result == gateway.ResultOK}, nil
}

func newPage(total int64, page int) *LibraryPage {
	pages := int((total + LibraryPageSize - 1) / LibraryPageSize)
	if page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return &LibraryPage{Page: page, TotalPages: pages, Total: total}
}
