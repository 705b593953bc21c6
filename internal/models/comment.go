package models

import "time"

// Comment is either top-level (ParentID nil) or a reply to a top-level
// comment on the same post.
type Comment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64     `gorm:"not null;index" json:"channel_message_id"`
	UserID           int64     `gorm:"not null" json:"user_id"`
	UserName         string    `gorm:"not null" json:"user_name"`
	CommentText      string    `gorm:"not null" json:"comment_text"`
	ParentID         *uint     `gorm:"index" json:"parent_id,omitempty"`
	Timestamp        time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

// IsTopLevel reports whether the comment has no parent.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
