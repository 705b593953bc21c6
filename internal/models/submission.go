// Package models contains the typed rows and value types of the post-interaction engine.
package models

import "time"

// Submission is a published post. ChannelMessageID is its identity everywhere
// else in the schema.
type Submission struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ChannelMessageID int64     `gorm:"not null;uniqueIndex" json:"channel_message_id"`
	UserID           int64     `gorm:"not null;index" json:"user_id"`
	UserName         string    `json:"user_name"`
	ContentText      string    `json:"content_text"`
	Timestamp        time.Time `gorm:"autoCreateTime" json:"timestamp"`
}
