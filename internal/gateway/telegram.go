package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"channelpost/internal/models"
	"channelpost/internal/observability"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/otel/trace"
)

// BotClient is the subset of *tgbotapi.BotAPI the gateway uses.
type BotClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Telegram implements ChannelGateway and Messenger on the Bot API.
type Telegram struct {
	bot       BotClient
	channelID int64
}

// NewTelegram creates a Telegram gateway for the given channel.
func NewTelegram(bot BotClient, channelID int64) *Telegram {
	return &Telegram{bot: bot, channelID: channelID}
}

func (t *Telegram) EditCaption(ctx context.Context, postID int64, caption string, layout models.Layout) (Result, error) {
	_, span := observability.TraceGatewayCall(ctx, "edit_caption")
	defer span.End()

	cfg := tgbotapi.NewEditMessageCaption(t.channelID, int(postID), caption)
	cfg.ParseMode = tgbotapi.ModeHTML
	markup := toMarkup(layout)
	cfg.ReplyMarkup = &markup

	_, err := t.bot.Send(cfg)
	return finish(span, "edit_caption", err)
}

func (t *Telegram) PinMessage(ctx context.Context, postID int64) (Result, error) {
	_, span := observability.TraceGatewayCall(ctx, "pin")
	defer span.End()

	_, err := t.bot.Request(tgbotapi.PinChatMessageConfig{
		ChatID:              t.channelID,
		MessageID:           int(postID),
		DisableNotification: true,
	})
	return finish(span, "pin", err)
}

func (t *Telegram) SendPrivateMessage(ctx context.Context, userID int64, text string) (Result, error) {
	_, span := observability.TraceGatewayCall(ctx, "send_private")
	defer span.End()

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	_, err := t.bot.Send(msg)
	return finish(span, "send_private", err)
}

func (t *Telegram) DeleteMessage(ctx context.Context, postID int64) (Result, error) {
	_, span := observability.TraceGatewayCall(ctx, "delete")
	defer span.End()

	_, err := t.bot.Request(tgbotapi.NewDeleteMessage(t.channelID, int(postID)))
	return finish(span, "delete", err)
}

func (t *Telegram) SendMenu(ctx context.Context, chatID int64, text string, layout models.Layout) (Result, error) {
	_, span := observability.TraceGatewayCall(ctx, "send_menu")
	defer span.End()

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if len(layout) > 0 {
		msg.ReplyMarkup = toMarkup(layout)
	}

	_, err := t.bot.Send(msg)
	return finish(span, "send_menu", err)
}

func (t *Telegram) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, span := observability.TraceGatewayCall(ctx, "answer_callback")
	defer span.End()

	_, err := t.bot.Request(tgbotapi.NewCallback(callbackID, text))
	_, err = finish(span, "answer_callback", err)
	return err
}

func finish(span trace.Span, op string, err error) (Result, error) {
	result := Classify(err)
	observability.GatewayResults.WithLabelValues(op, string(result)).Inc()
	if result == ResultOK {
		return ResultOK, nil
	}
	span.RecordError(err)
	return result, err
}

// Classify maps a Bot API error onto a Result. An edit that changes nothing
// is reported by Telegram as an error but is a success here.
func Classify(err error) Result {
	if err == nil {
		return ResultOK
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return ResultError
	}

	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return ResultRateLimited
	case apiErr.Code == http.StatusForbidden:
		return ResultBlocked
	case strings.Contains(msg, "message is not modified"):
		return ResultOK
	case strings.Contains(msg, "already pinned"):
		return ResultAlreadyPinned
	case strings.Contains(msg, "not found"):
		return ResultNotFound
	}
	return ResultError
}

func toMarkup(layout models.Layout) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(layout))
	for _, row := range layout {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
