// Package events decodes and encodes the inbound interaction descriptors:
// inline-button callback data and bot deep-link payloads.
package events

import (
	"fmt"
	"strconv"
	"strings"

	"channelpost/internal/models"
)

// Action is the top-level verb of an interaction event.
type Action string

const (
	ActionReact          Action = "react"
	ActionCollect        Action = "collect"
	ActionComment        Action = "comment"
	ActionThreadExpand   Action = "thread_expand"
	ActionThreadCollapse Action = "thread_collapse"
)

// Comment sub-actions.
const (
	CommentShow    = "show"
	CommentHide    = "hide"
	CommentRefresh = "refresh"
)

// Event is a decoded interaction on one post.
type Event struct {
	Action    Action
	Sub       string
	PostID    int64
	CommentID uint
}

// ToggleKind maps react/collect events onto the toggle axis.
func (e Event) ToggleKind() (models.ToggleKind, bool) {
	switch e.Action {
	case ActionReact:
		return models.ToggleKind(e.Sub), true
	case ActionCollect:
		return models.ToggleCollect, true
	}
	return "", false
}

// ParseCallback decodes `action:subaction:postId` button data. collect has
// no subaction and is encoded as `collect:postId`.
func ParseCallback(data string) (Event, error) {
	parts := strings.Split(data, ":")
	invalid := models.NewInvalidEventError(data)

	switch Action(parts[0]) {
	case ActionCollect:
		if len(parts) != 2 {
			return Event{}, invalid
		}
		postID, err := parsePostID(parts[1])
		if err != nil {
			return Event{}, invalid
		}
		return Event{Action: ActionCollect, PostID: postID}, nil

	case ActionReact:
		if len(parts) != 3 {
			return Event{}, invalid
		}
		if parts[1] != string(models.ToggleLike) && parts[1] != string(models.ToggleDislike) {
			return Event{}, invalid
		}
		postID, err := parsePostID(parts[2])
		if err != nil {
			return Event{}, invalid
		}
		return Event{Action: ActionReact, Sub: parts[1], PostID: postID}, nil

	case ActionComment:
		if len(parts) != 3 {
			return Event{}, invalid
		}
		switch parts[1] {
		case CommentShow, CommentHide, CommentRefresh:
		default:
			return Event{}, invalid
		}
		postID, err := parsePostID(parts[2])
		if err != nil {
			return Event{}, invalid
		}
		return Event{Action: ActionComment, Sub: parts[1], PostID: postID}, nil
	}

	return Event{}, invalid
}

// IsChannelCallback reports whether data addresses a channel post rather
// than a private-chat menu.
func IsChannelCallback(data string) bool {
	action, _, _ := strings.Cut(data, ":")
	switch Action(action) {
	case ActionReact, ActionCollect, ActionComment:
		return true
	}
	return false
}

func parsePostID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid post id %q", s)
	}
	return id, nil
}

func parseCommentID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid comment id %q", s)
	}
	return uint(id), nil
}

// ReactData encodes a like/dislike button.
func ReactData(postID int64, kind models.ToggleKind) string {
	return fmt.Sprintf("%s:%s:%d", ActionReact, kind, postID)
}

// CollectData encodes the collect button.
func CollectData(postID int64) string {
	return fmt.Sprintf("%s:%d", ActionCollect, postID)
}

// CommentData encodes a comment-section button.
func CommentData(postID int64, sub string) string {
	return fmt.Sprintf("%s:%s:%d", ActionComment, sub, postID)
}
