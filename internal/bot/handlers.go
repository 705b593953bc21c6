package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"channelpost/internal/events"
	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	actor := actorOf(q.From)

	if events.IsChannelCallback(q.Data) {
		b.handleChannelCallback(ctx, q, actor)
		return
	}

	route, err := events.ParseMenuCallback(q.Data)
	b.answer(ctx, q.ID, "")
	if err != nil {
		observability.Logger.DebugContext(ctx, "Dropping unknown callback", slog.String("data", q.Data))
		return
	}
	if q.Message == nil || q.Message.Chat == nil {
		return
	}

	chatID := q.Message.Chat.ID
	switch route.Kind {
	case events.MenuMain:
		b.sendMainMenu(ctx, chatID)
	case events.MenuPosts:
		page, err := b.library.Posts(ctx, actor.ID, route.Page)
		b.reply(ctx, chatID, err, func() (string, models.Layout) { return postsPage(b.links, page) })
	case events.MenuCollections:
		page, err := b.library.Collections(ctx, actor.ID, route.Page)
		b.reply(ctx, chatID, err, func() (string, models.Layout) { return collectionsPage(b.links, page) })
	case events.MenuDeletePost:
		page, err := b.library.StartDeletePost(ctx, actor.ID, route.Page)
		b.reply(ctx, chatID, err, func() (string, models.Layout) { return deletePostPrompt(page), nil })
	}
}

func (b *Bot) handleChannelCallback(ctx context.Context, q *tgbotapi.CallbackQuery, actor service.Actor) {
	ev, err := events.ParseCallback(q.Data)
	if err != nil {
		observability.Logger.WarnContext(ctx, "Dropping invalid event", slog.String("data", q.Data))
		b.answer(ctx, q.ID, "")
		return
	}

	ctx = observability.NewEventContext(ctx, ev.PostID, actor.ID)
	in := service.EventInput{Event: ev, Actor: actor}
	if q.Message != nil {
		in.DisplayedCaption = q.Message.Caption
	}

	res, err := b.interactions.HandleEvent(ctx, in)
	switch {
	case err == nil:
		b.answer(ctx, q.ID, toast(res))
	case models.IsCode(err, models.CodeGatewayRejected):
		// The store change is kept; the next event redraws the post.
		b.answer(ctx, q.ID, toast(res))
	default:
		observability.Logger.ErrorContext(ctx, "Event failed",
			slog.String("data", q.Data),
			slog.String("error", err.Error()),
		)
		b.answer(ctx, q.ID, "Something went wrong, please try again.")
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	actor := actorOf(m.From)
	chatID := m.Chat.ID

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			b.handleStart(ctx, actor, chatID, m.CommandArguments())
		case "cancel":
			if err := b.sessions.Clear(ctx, actor.ID); err != nil {
				observability.Logger.WarnContext(ctx, "Failed to clear session", slog.String("error", err.Error()))
			}
			b.send(ctx, chatID, "Cancelled.", nil)
		default:
			b.send(ctx, chatID, "Send /start to open the menu.", nil)
		}
		return
	}

	session, err := b.sessions.Get(ctx, actor.ID)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	if session == nil {
		b.send(ctx, chatID, "Send /start to open the menu.", nil)
		return
	}

	ctx = observability.NewEventContext(ctx, session.PostID, actor.ID)
	switch session.Kind {
	case models.SessionComment:
		if _, err := b.comments.SubmitComment(ctx, actor, session, m.Text); err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		b.send(ctx, chatID, "✅ Comment posted.", backToPost(b.links, session.PostID))

	case models.SessionDeleteComment:
		number, ok := b.number(ctx, chatID, m.Text)
		if !ok {
			return
		}
		result, err := b.comments.DeleteByNumber(ctx, actor.ID, session, number)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		b.send(ctx, chatID, commentDeleted(result), nil)
		if result.Menu.Size() == 0 {
			_ = b.sessions.Clear(ctx, actor.ID)
			b.send(ctx, chatID, "No more comments to delete.", backToPost(b.links, session.PostID))
			return
		}
		text, layout := deleteCommentMenu(b.links, result.Menu)
		b.send(ctx, chatID, text, layout)

	case models.SessionDeletePost:
		number, ok := b.number(ctx, chatID, m.Text)
		if !ok {
			return
		}
		result, err := b.library.DeletePostByNumber(ctx, actor.ID, session, number)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		b.send(ctx, chatID, postDeleted(result), mainMenuButton())
	}
}

func (b *Bot) handleStart(ctx context.Context, actor service.Actor, chatID int64, payload string) {
	start, err := events.ParseStartPayload(payload)
	if err != nil {
		observability.Logger.WarnContext(ctx, "Dropping invalid deep link", slog.String("payload", payload))
		b.send(ctx, chatID, "❌ This link is not valid.", nil)
		return
	}

	ctx = observability.NewEventContext(ctx, start.PostID, actor.ID)
	switch start.Kind {
	case events.StartMain:
		b.sendMainMenu(ctx, chatID)

	case events.StartThreadExpand, events.StartThreadCollapse:
		ev, _ := start.Event()
		_, err := b.interactions.HandleEvent(ctx, service.EventInput{Event: ev, Actor: actor})
		if err != nil && !models.IsCode(err, models.CodeGatewayRejected) {
			b.fail(ctx, chatID, err)
			return
		}
		text := "✅ Replies expanded."
		if start.Kind == events.StartThreadCollapse {
			text = "✅ Replies collapsed."
		}
		b.send(ctx, chatID, text, backToPost(b.links, start.PostID))

	case events.StartComment:
		session, err := b.comments.StartComment(ctx, actor.ID, start.PostID, start.ParentID)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		text := "✍️ Send your comment."
		if session.ParentID != nil {
			text = "✍️ Send your reply."
		}
		b.send(ctx, chatID, text+"\n\n(send /cancel to cancel)", nil)

	case events.StartManageComments:
		menu, err := b.comments.OpenDeleteMenu(ctx, actor.ID, start.PostID)
		if err != nil {
			b.fail(ctx, chatID, err)
			return
		}
		text, layout := deleteCommentMenu(b.links, menu)
		b.send(ctx, chatID, text, layout)
	}
}

func (b *Bot) number(ctx context.Context, chatID int64, text string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		b.send(ctx, chatID, "❌ Please send a number, or /cancel.", nil)
		return 0, false
	}
	return n, true
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID int64) {
	text, layout := mainMenu()
	b.send(ctx, chatID, text, layout)
}

// reply sends the rendered view, or an error message when err is set.
func (b *Bot) reply(ctx context.Context, chatID int64, err error, render func() (string, models.Layout)) {
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	text, layout := render()
	b.send(ctx, chatID, text, layout)
}

func (b *Bot) send(ctx context.Context, chatID int64, text string, layout models.Layout) {
	if _, err := b.messenger.SendMenu(ctx, chatID, text, layout); err != nil {
		observability.Logger.WarnContext(ctx, "Private reply not delivered", slog.String("error", err.Error()))
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string) {
	if err := b.messenger.AnswerCallback(ctx, callbackID, text); err != nil {
		observability.Logger.DebugContext(ctx, "Callback answer failed", slog.String("error", err.Error()))
	}
}

// fail tells the user what went wrong. Validation and permission messages
// are shown as-is; anything else is logged and reported generically.
func (b *Bot) fail(ctx context.Context, chatID int64, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeValidation, models.CodeUnauthorized:
			b.send(ctx, chatID, "❌ "+appErr.Message, nil)
			return
		case models.CodeNotFound:
			b.send(ctx, chatID, "❌ It no longer exists.", nil)
			return
		}
	}
	observability.Logger.ErrorContext(ctx, "Private workflow failed", slog.String("error", err.Error()))
	b.send(ctx, chatID, "❌ Something went wrong, please try again.", nil)
}
