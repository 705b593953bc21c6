package models

import "time"

// PinnedPost records the one-way promotion of a post.
type PinnedPost struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64     `gorm:"not null;uniqueIndex" json:"channel_message_id"`
	LikeCountAtPin   int64     `json:"like_count_at_pin"`
	PinnedAt         time.Time `gorm:"autoCreateTime" json:"pinned_at"`
}
