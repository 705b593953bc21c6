package service

import (
	"context"
	"testing"

	"channelpost/internal/cache"
	"channelpost/internal/models"

	"github.com/stretchr/testify/require"
)

// reactionRepoStub is a stub for repository.ReactionRepository.
type reactionRepoStub struct {
	getFn         func(context.Context, int64, int64) (*models.Reaction, error)
	insertFn      func(context.Context, int64, int64, int) (bool, error)
	deleteIfFn    func(context.Context, int64, int64, int) (bool, error)
	switchFn      func(context.Context, int64, int64, int, int) (bool, error)
	countByPostFn func(context.Context, int64) (int64, int64, error)
}

func (s *reactionRepoStub) Get(ctx context.Context, postID, userID int64) (*models.Reaction, error) {
	return s.getFn(ctx, postID, userID)
}
func (s *reactionRepoStub) Insert(ctx context.Context, postID, userID int64, value int) (bool, error) {
	return s.insertFn(ctx, postID, userID, value)
}
func (s *reactionRepoStub) DeleteIfValue(ctx context.Context, postID, userID int64, value int) (bool, error) {
	return s.deleteIfFn(ctx, postID, userID, value)
}
func (s *reactionRepoStub) SwitchValue(ctx context.Context, postID, userID int64, from, to int) (bool, error) {
	return s.switchFn(ctx, postID, userID, from, to)
}
func (s *reactionRepoStub) CountByPost(ctx context.Context, postID int64) (int64, int64, error) {
	return s.countByPostFn(ctx, postID)
}

func noopReactionRepo() *reactionRepoStub {
	return &reactionRepoStub{
		getFn:         func(_ context.Context, _, _ int64) (*models.Reaction, error) { return nil, nil },
		insertFn:      func(_ context.Context, _, _ int64, _ int) (bool, error) { return true, nil },
		deleteIfFn:    func(_ context.Context, _, _ int64, _ int) (bool, error) { return true, nil },
		switchFn:      func(_ context.Context, _, _ int64, _, _ int) (bool, error) { return true, nil },
		countByPostFn: func(_ context.Context, _ int64) (int64, int64, error) { return 0, 0, nil },
	}
}

// collectionRepoStub is a stub for repository.CollectionRepository.
type collectionRepoStub struct {
	existsFn      func(context.Context, int64, int64) (bool, error)
	insertFn      func(context.Context, int64, int64) (bool, error)
	deleteFn      func(context.Context, int64, int64) (bool, error)
	countByPostFn func(context.Context, int64) (int64, error)
	listFn        func(context.Context, int64, int, int) ([]*models.Submission, error)
	countByUserFn func(context.Context, int64) (int64, error)
}

func (s *collectionRepoStub) Exists(ctx context.Context, postID, userID int64) (bool, error) {
	return s.existsFn(ctx, postID, userID)
}
func (s *collectionRepoStub) Insert(ctx context.Context, postID, userID int64) (bool, error) {
	return s.insertFn(ctx, postID, userID)
}
func (s *collectionRepoStub) Delete(ctx context.Context, postID, userID int64) (bool, error) {
	return s.deleteFn(ctx, postID, userID)
}
func (s *collectionRepoStub) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *collectionRepoStub) ListPostsByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.Submission, error) {
	return s.listFn(ctx, userID, limit, offset)
}
func (s *collectionRepoStub) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.countByUserFn(ctx, userID)
}

func noopCollectionRepo() *collectionRepoStub {
	return &collectionRepoStub{
		existsFn:      func(_ context.Context, _, _ int64) (bool, error) { return false, nil },
		insertFn:      func(_ context.Context, _, _ int64) (bool, error) { return true, nil },
		deleteFn:      func(_ context.Context, _, _ int64) (bool, error) { return true, nil },
		countByPostFn: func(_ context.Context, _ int64) (int64, error) { return 0, nil },
		listFn:        func(_ context.Context, _ int64, _, _ int) ([]*models.Submission, error) { return nil, nil },
		countByUserFn: func(_ context.Context, _ int64) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, int64) ([]*models.Comment, error)
	listByOwnerFn func(context.Context, int64, int64, bool) ([]*models.Comment, error)
	countByPostFn func(context.Context, int64) (int64, error)
	deleteFn      func(context.Context, uint) (int64, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListByPostAndAuthor(ctx context.Context, postID, userID int64, own bool) ([]*models.Comment, error) {
	return s.listByOwnerFn(ctx, postID, userID, own)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID int64) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) DeleteWithReplies(ctx context.Context, id uint) (int64, error) {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:  func(_ context.Context, _ int64) ([]*models.Comment, error) { return nil, nil },
		listByOwnerFn: func(_ context.Context, _, _ int64, _ bool) ([]*models.Comment, error) { return nil, nil },
		countByPostFn: func(_ context.Context, _ int64) (int64, error) { return 0, nil },
		deleteFn:      func(_ context.Context, _ uint) (int64, error) { return 1, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	recordFn func(context.Context, int64, int64, models.NotificationKind) (bool, error)
}

func (s *notificationRepoStub) Record(ctx context.Context, postID, actorID int64, kind models.NotificationKind) (bool, error) {
	return s.recordFn(ctx, postID, actorID, kind)
}

// pinRepoStub is a stub for repository.PinRepository.
type pinRepoStub struct {
	existsFn func(context.Context, int64) (bool, error)
	insertFn func(context.Context, int64, int64) (bool, error)
}

func (s *pinRepoStub) Exists(ctx context.Context, postID int64) (bool, error) {
	return s.existsFn(ctx, postID)
}
func (s *pinRepoStub) Insert(ctx context.Context, postID, likeCount int64) (bool, error) {
	return s.insertFn(ctx, postID, likeCount)
}

func noopPinRepo() *pinRepoStub {
	return &pinRepoStub{
		existsFn: func(_ context.Context, _ int64) (bool, error) { return false, nil },
		insertFn: func(_ context.Context, _, _ int64) (bool, error) { return true, nil },
	}
}

var testLinks = Links{BotUsername: "postbot", ChannelUsername: "mychannel"}

func uintPtr(v uint) *uint { return &v }

// memoryStates returns view-state and session stores backed by the
// in-process LRU fallback.
func memoryStates(t *testing.T) (*cache.ViewStateStore, *cache.SessionStore) {
	t.Helper()
	store, err := cache.NewStore(nil, 256)
	require.NoError(t, err)
	return cache.NewViewStateStore(store, 0), cache.NewSessionStore(store, 0)
}
