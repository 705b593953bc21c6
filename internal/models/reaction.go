package models

import "time"

// Reaction values on the like/dislike axis.
const (
	ReactionLike    = 1
	ReactionDislike = -1
)

// Reaction is a user's vote on a post. The combination of ChannelMessageID
// and UserID must be unique.
type Reaction struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64     `gorm:"not null;uniqueIndex:idx_reaction_post_user" json:"channel_message_id"`
	UserID           int64     `gorm:"not null;uniqueIndex:idx_reaction_post_user" json:"user_id"`
	ReactionType     int       `gorm:"not null" json:"reaction_type"`
	Timestamp        time.Time `gorm:"autoCreateTime" json:"timestamp"`
}
