// Package gateway is the boundary to the chat platform. Every call returns an
// explicit Result so callers decide deliberately what to suppress or log.
package gateway

import (
	"context"

	"channelpost/internal/models"
)

// Result is the outcome class of a gateway call.
type Result string

const (
	ResultOK            Result = "ok"
	ResultNotFound      Result = "not_found"
	ResultRateLimited   Result = "rate_limited"
	ResultBlocked       Result = "blocked"
	ResultAlreadyPinned Result = "already_pinned"
	ResultError         Result = "error"
)

// ChannelGateway writes to the broadcast channel and to users' private chats.
type ChannelGateway interface {
	EditCaption(ctx context.Context, postID int64, caption string, layout models.Layout) (Result, error)
	PinMessage(ctx context.Context, postID int64) (Result, error)
	SendPrivateMessage(ctx context.Context, userID int64, text string) (Result, error)
	DeleteMessage(ctx context.Context, postID int64) (Result, error)
}

// Messenger drives the bot's private-chat menus.
type Messenger interface {
	SendMenu(ctx context.Context, chatID int64, text string, layout models.Layout) (Result, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
