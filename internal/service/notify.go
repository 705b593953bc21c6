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

const notifyPreviewRunes = 30

// Notice describes one author notification.
type Notice struct {
	AuthorID  int64
	ActorID   int64
	ActorName string
	PostID    int64
	Preview   string
	Kind      models.NotificationKind
	// Comment is the comment text, only for comment notices.
	Comment string
}

// NotificationDispatcher tells post authors about interactions. Delivery
// never fails the caller: every error is logged and swallowed.
type NotificationDispatcher struct {
	gateway gateway.ChannelGateway
	ledger  repository.NotificationRepository
	links   Links
}

// NewNotificationDispatcher creates a dispatcher. ledger may be nil, in which
// case only self-suppression applies.
func NewNotificationDispatcher(gw gateway.ChannelGateway, ledger repository.NotificationRepository, links Links) *NotificationDispatcher {
	return &NotificationDispatcher{gateway: gw, ledger: ledger, links: links}
}

// Dispatch sends the notice and reports whether a message was delivered.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n Notice) bool {
	kind := string(n.Kind)
	if n.AuthorID == n.ActorID {
		observability.NotificationsTotal.WithLabelValues(kind, "self").Inc()
		return false
	}

	text, ok := d.compose(n)
	if !ok {
		observability.NotificationsTotal.WithLabelValues(kind, "unknown").Inc()
		return false
	}

	// Likes and collections can be toggled back and forth; the ledger keeps
	// it to one message per actor and post.
	if d.ledger != nil && (n.Kind == models.NotifyLike || n.Kind == models.NotifyCollect) {
		fresh, err := d.ledger.Record(ctx, n.PostID, n.ActorID, n.Kind)
		if err != nil {
			observability.Logger.WarnContext(ctx, "Notification ledger unavailable, skipping",
				slog.String("kind", kind),
				slog.String("error", err.Error()),
			)
			observability.NotificationsTotal.WithLabelValues(kind, "ledger_error").Inc()
			return false
		}
		if !fresh {
			observability.NotificationsTotal.WithLabelValues(kind, "duplicate").Inc()
			return false
		}
	}

	return d.send(ctx, n.AuthorID, kind, text)
}

// NotifyPromotion tells the author their post was pinned. The pin record
// already guarantees this runs once per post.
func (d *NotificationDispatcher) NotifyPromotion(ctx context.Context, post *models.Submission, likes int64) bool {
	text := fmt.Sprintf(
		"🔥 <b>Your post is trending!</b>\n\nYour post %s reached <b>%d</b> likes and was pinned to the top of the channel.",
		d.postLink(post.ChannelMessageID, post.ContentText),
		likes,
	)
	return d.send(ctx, post.UserID, string(models.NotifyPin), text)
}

func (d *NotificationDispatcher) compose(n Notice) (string, bool) {
	actor := userLink(n.ActorID, n.ActorName)
	post := d.postLink(n.PostID, n.Preview)

	switch n.Kind {
	case models.NotifyLike:
		return fmt.Sprintf("👍 %s liked your post %s", actor, post), true
	case models.NotifyCollect:
		return fmt.Sprintf("⭐ %s collected your post %s", actor, post), true
	case models.NotifyComment:
		return fmt.Sprintf("💬 %s commented on your post %s\n%s", actor, post, escape(n.Comment)), true
	}
	return "", false
}

func (d *NotificationDispatcher) postLink(postID int64, content string) string {
	preview := truncate(content, notifyPreviewRunes, "...")
	if preview == "" {
		preview = "your post"
	}
	return anchor(d.links.Post(postID), escape(preview))
}

func (d *NotificationDispatcher) send(ctx context.Context, userID int64, kind, text string) bool {
	result, err := d.gateway.SendPrivateMessage(ctx, userID, text)
	observability.NotificationsTotal.WithLabelValues(kind, string(result)).Inc()
	if result != gateway.ResultOK {
		observability.Logger.WarnContext(ctx, "Author notification not delivered",
			slog.String("kind", kind),
			slog.String("result", string(result)),
			slog.Any("error", err),
		)
		return false
	}
	return true
}
