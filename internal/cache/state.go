package cache

import (
	"context"
	"fmt"
	"time"

	"channelpost/internal/models"
)

// ViewKey is the key of a post's render state.
func ViewKey(postID int64) string {
	return fmt.Sprintf("post:view:%d", postID)
}

// SessionKey is the key of a user's private-chat session.
func SessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

// ViewStateStore persists the view mode and last displayed surface per post.
type ViewStateStore struct {
	store Store
	ttl   time.Duration
}

// NewViewStateStore creates a new ViewStateStore
func NewViewStateStore(store Store, ttl time.Duration) *ViewStateStore {
	return &ViewStateStore{store: store, ttl: ttl}
}

// Get returns the stored state and whether one was found.
func (s *ViewStateStore) Get(ctx context.Context, postID int64) (models.ViewState, bool, error) {
	var state models.ViewState
	found, err := s.store.Get(ctx, ViewKey(postID), &state)
	if err != nil || !found {
		return models.ViewState{}, false, err
	}
	return state, true, nil
}

func (s *ViewStateStore) Put(ctx context.Context, postID int64, state models.ViewState) error {
	return s.store.Set(ctx, ViewKey(postID), state, s.ttl)
}

func (s *ViewStateStore) Forget(ctx context.Context, postID int64) error {
	return s.store.Delete(ctx, ViewKey(postID))
}

// SessionStore keeps pending private-chat workflows per user.
type SessionStore struct {
	store Store
	ttl   time.Duration
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(store Store, ttl time.Duration) *SessionStore {
	return &SessionStore{store: store, ttl: ttl}
}

// Get returns nil when the user has no pending session.
func (s *SessionStore) Get(ctx context.Context, userID int64) (*models.Session, error) {
	var session models.Session
	found, err := s.store.Get(ctx, SessionKey(userID), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Put(ctx context.Context, userID int64, session *models.Session) error {
	return s.store.Set(ctx, SessionKey(userID), session, s.ttl)
}

func (s *SessionStore) Clear(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, SessionKey(userID))
}
