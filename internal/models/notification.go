package models

import "time"

// NotificationKind is the kind of interaction an author is told about.
type NotificationKind string

const (
	NotifyLike    NotificationKind = "like"
	NotifyCollect NotificationKind = "collect"
	NotifyComment NotificationKind = "comment"
	NotifyPin     NotificationKind = "pin"
)

// Notification is the dedup ledger row: one per (post, actor, kind).
type Notification struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64            `gorm:"not null;uniqueIndex:idx_notification_post_user_kind" json:"channel_message_id"`
	UserID           int64            `gorm:"not null;uniqueIndex:idx_notification_post_user_kind" json:"user_id"`
	NotificationType NotificationKind `gorm:"not null;uniqueIndex:idx_notification_post_user_kind" json:"notification_type"`
	Timestamp        time.Time        `gorm:"autoCreateTime" json:"timestamp"`
}
