// Package bootstrap connects the runtime dependencies and wires the engine
// services together.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"channelpost/internal/cache"
	"channelpost/internal/config"
	"channelpost/internal/database"
	"channelpost/internal/gateway"
	"channelpost/internal/observability"
	"channelpost/internal/repository"
	"channelpost/internal/service"

	"github.com/codeGROOVE-dev/retry"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// fallbackStoreSize bounds the in-process store used without Redis.
const fallbackStoreSize = 50_000

// InitRuntime connects to the database, retrying while it comes up, and to
// Redis. The Redis client is nil when Redis is not reachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	var db *gorm.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = database.Connect(cfg)
			return err
		},
		retry.Attempts(8),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(15*time.Second),
		retry.Context(ctx),
		retry.MaxJitter(time.Second),
		retry.OnRetry(func(n uint, err error) {
			observability.Logger.Warn("Database not ready, will retry",
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("error", err.Error()),
			)
		}),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	return db, cache.Connect(ctx, cfg.RedisURL), nil
}

// Engine is the set of wired services the bot dispatches into.
type Engine struct {
	Interactions *service.InteractionService
	Comments     *service.CommentService
	Library      *service.LibraryService
	Sessions     *cache.SessionStore
	Views        *cache.ViewStateStore
	Links        service.Links
}

// NewEngine builds every repository and service on top of db, the state
// store and the channel gateway.
func NewEngine(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, gw gateway.ChannelGateway) (*Engine, error) {
	store, err := cache.NewStore(redisClient, fallbackStoreSize)
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}
	views := cache.NewViewStateStore(store, cfg.ViewStateTTL())
	sessions := cache.NewSessionStore(store, cfg.SessionTTL())
	links := service.Links{BotUsername: cfg.BotUsername, ChannelUsername: cfg.ChannelUsername}

	submissions := repository.NewSubmissionRepository(db)
	reactions := repository.NewReactionRepository(db)
	collections := repository.NewCollectionRepository(db)
	comments := repository.NewCommentRepository(db)
	pins := repository.NewPinRepository(db)

	notifier := service.NewNotificationDispatcher(gw, repository.NewNotificationRepository(db), links)
	interactions := service.NewInteractionService(service.InteractionDeps{
		Submissions: submissions,
		Pins:        pins,
		Toggles:     service.NewToggleService(reactions, collections),
		Counter:     service.NewCounterService(reactions, comments, collections),
		Threads:     service.NewThreadBuilder(comments, links, cfg.CommentRowCap),
		Watcher:     service.NewPinWatcher(pins, gw, notifier, cfg.PinThreshold),
		Notifier:    notifier,
		Surfaces:    service.NewSurfaceBuilder(links),
		Reconciler:  service.NewRenderReconciler(gw),
		Views:       views,
	})

	return &Engine{
		Interactions: interactions,
		Comments:     service.NewCommentService(comments, submissions, sessions, notifier, interactions),
		Library:      service.NewLibraryService(submissions, collections, gw, sessions, views),
		Sessions:     sessions,
		Views:        views,
		Links:        links,
	}, nil
}
