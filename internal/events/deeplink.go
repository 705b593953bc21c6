package events

import (
	"fmt"
	"strings"

	"channelpost/internal/models"
)

// StartKind classifies a /start payload.
type StartKind string

const (
	StartMain           StartKind = "main"
	StartThreadExpand   StartKind = "thread_expand"
	StartThreadCollapse StartKind = "thread_collapse"
	StartComment        StartKind = "comment"
	StartManageComments StartKind = "manage_comments"
)

// StartPayload is a decoded deep-link payload.
type StartPayload struct {
	Kind      StartKind
	PostID    int64
	CommentID uint
	ParentID  *uint
}

// Event converts thread deep links into channel events.
func (p StartPayload) Event() (Event, bool) {
	switch p.Kind {
	case StartThreadExpand:
		return Event{Action: ActionThreadExpand, PostID: p.PostID, CommentID: p.CommentID}, true
	case StartThreadCollapse:
		return Event{Action: ActionThreadCollapse, PostID: p.PostID}, true
	}
	return Event{}, false
}

// ParseStartPayload decodes the argument of /start. An empty payload or
// "main" opens the main menu.
func ParseStartPayload(payload string) (StartPayload, error) {
	payload = strings.TrimSpace(payload)
	invalid := models.NewInvalidEventError(payload)

	switch {
	case payload == "" || payload == string(StartMain):
		return StartPayload{Kind: StartMain}, nil

	case strings.HasPrefix(payload, "thread_expand_"):
		parts := strings.Split(strings.TrimPrefix(payload, "thread_expand_"), "_")
		if len(parts) != 2 {
			return StartPayload{}, invalid
		}
		postID, err := parsePostID(parts[0])
		if err != nil {
			return StartPayload{}, invalid
		}
		cid, err := parseCommentID(parts[1])
		if err != nil {
			return StartPayload{}, invalid
		}
		return StartPayload{Kind: StartThreadExpand, PostID: postID, CommentID: cid}, nil

	case strings.HasPrefix(payload, "thread_collapse_"):
		postID, err := parsePostID(strings.TrimPrefix(payload, "thread_collapse_"))
		if err != nil {
			return StartPayload{}, invalid
		}
		return StartPayload{Kind: StartThreadCollapse, PostID: postID}, nil

	case strings.HasPrefix(payload, "manage_comments_"):
		postID, err := parsePostID(strings.TrimPrefix(payload, "manage_comments_"))
		if err != nil {
			return StartPayload{}, invalid
		}
		return StartPayload{Kind: StartManageComments, PostID: postID}, nil

	case strings.HasPrefix(payload, "comment_"):
		parts := strings.Split(strings.TrimPrefix(payload, "comment_"), "_")
		if len(parts) < 1 || len(parts) > 2 {
			return StartPayload{}, invalid
		}
		postID, err := parsePostID(parts[0])
		if err != nil {
			return StartPayload{}, invalid
		}
		out := StartPayload{Kind: StartComment, PostID: postID}
		if len(parts) == 2 {
			parent, err := parseCommentID(parts[1])
			if err != nil {
				return StartPayload{}, invalid
			}
			out.ParentID = &parent
		}
		return out, nil
	}

	return StartPayload{}, invalid
}

// ExpandPayload is the deep link that reveals all replies of a comment.
func ExpandPayload(postID int64, commentID uint) string {
	return fmt.Sprintf("thread_expand_%d_%d", postID, commentID)
}

// CollapsePayload is the deep link that folds the expanded thread.
func CollapsePayload(postID int64) string {
	return fmt.Sprintf("thread_collapse_%d", postID)
}

// CommentPayload opens the comment prompt, as a reply when parentID is set.
func CommentPayload(postID int64, parentID *uint) string {
	if parentID != nil {
		return fmt.Sprintf("comment_%d_%d", postID, *parentID)
	}
	return fmt.Sprintf("comment_%d", postID)
}

// ManagePayload opens the comment deletion menu.
func ManagePayload(postID int64) string {
	return fmt.Sprintf("manage_comments_%d", postID)
}
