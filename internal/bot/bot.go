// Package bot runs the Telegram update loop and routes channel callbacks,
// deep links and private-chat replies to the engine services.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"channelpost/internal/gateway"
	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Interactions handles channel events.
type Interactions interface {
	HandleEvent(ctx context.Context, in service.EventInput) (*service.EventResult, error)
}

// Comments drives the comment submission and deletion workflows.
type Comments interface {
	StartComment(ctx context.Context, userID, postID int64, parentID *uint) (*models.Session, error)
	SubmitComment(ctx context.Context, actor service.Actor, session *models.Session, text string) (*models.Comment, error)
	OpenDeleteMenu(ctx context.Context, userID, postID int64) (*service.DeleteMenu, error)
	DeleteByNumber(ctx context.Context, userID int64, session *models.Session, number int) (*service.CommentDeletion, error)
}

// Library serves the user's posts and collections.
type Library interface {
	Posts(ctx context.Context, userID int64, page int) (*service.LibraryPage, error)
	Collections(ctx context.Context, userID int64, page int) (*service.LibraryPage, error)
	StartDeletePost(ctx context.Context, userID int64, page int) (*service.LibraryPage, error)
	DeletePostByNumber(ctx context.Context, userID int64, session *models.Session, number int) (*service.PostDeletion, error)
}

// Deps groups the collaborators of the bot.
type Deps struct {
	Updates      UpdateSource
	Messenger    gateway.Messenger
	Interactions Interactions
	Comments     Comments
	Library      Library
	Sessions     service.SessionStore
	Links        service.Links
	EventTimeout time.Duration
}

// Bot dispatches every update on its own goroutine under a bounded timeout.
type Bot struct {
	updates      UpdateSource
	messenger    gateway.Messenger
	interactions Interactions
	comments     Comments
	library      Library
	sessions     service.SessionStore
	links        service.Links
	timeout      time.Duration

	wg sync.WaitGroup
}

func New(deps Deps) *Bot {
	timeout := deps.EventTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Bot{
		updates:      deps.Updates,
		messenger:    deps.Messenger,
		interactions: deps.Interactions,
		comments:     deps.Comments,
		library:      deps.Library,
		sessions:     deps.Sessions,
		links:        deps.Links,
		timeout:      timeout,
	}
}

// Run polls for updates until ctx is cancelled, then waits for in-flight
// events to finish.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.updates.GetUpdatesChan(cfg)

	observability.Logger.Info("Bot polling for updates")
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.updates.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.Dispatch(ctx, update)
			}()
		}
	}
}

// Dispatch handles one update. A failure or panic is contained to it.
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			observability.Logger.ErrorContext(ctx, "Update handler panicked",
				slog.Int("update_id", update.UpdateID),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil && update.Message.Chat.IsPrivate():
		b.handleMessage(ctx, update.Message)
	}
}

func actorOf(u *tgbotapi.User) service.Actor {
	if u == nil {
		return service.Actor{}
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	if name == "" {
		name = u.UserName
	}
	return service.Actor{ID: u.ID, Name: name}
}
