package models

import "time"

// Collection marks a post as bookmarked by a user.
type Collection struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64     `gorm:"not null;uniqueIndex:idx_collection_post_user" json:"channel_message_id"`
	UserID           int64     `gorm:"not null;uniqueIndex:idx_collection_post_user;index" json:"user_id"`
	Timestamp        time.Time `gorm:"autoCreateTime" json:"timestamp"`
}
