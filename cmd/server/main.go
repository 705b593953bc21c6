// Command server runs the channel interaction bot together with its ops
// HTTP endpoint.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channelpost/internal/bootstrap"
	"channelpost/internal/bot"
	"channelpost/internal/config"
	"channelpost/internal/gateway"
	"channelpost/internal/observability"
	"channelpost/internal/server"

	"github.com/codeGROOVE-dev/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	// A .env file is optional outside containers.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "channelpost",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ops := server.New(db, redisClient)
	go func() {
		if err := ops.Start(":" + cfg.OpsPort); err != nil {
			observability.Logger.Error("Ops server stopped", slog.String("error", err.Error()))
		}
	}()

	if cfg.TelegramToken != "" {
		if err := runBot(ctx, cfg, db, redisClient); err != nil {
			observability.Logger.Error("Bot stopped", slog.String("error", err.Error()))
		}
	} else {
		<-ctx.Done()
	}

	observability.Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ops.Shutdown(shutdownCtx); err != nil {
		observability.Logger.Warn("Ops server shutdown error", slog.String("error", err.Error()))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		observability.Logger.Warn("Tracing shutdown error", slog.String("error", err.Error()))
	}
}

func runBot(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) error {
	var api *tgbotapi.BotAPI
	err := retry.Do(
		func() error {
			var err error
			api, err = tgbotapi.NewBotAPI(cfg.TelegramToken)
			return err
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.Context(ctx),
		retry.MaxJitter(time.Second),
	)
	if err != nil {
		return err
	}
	if cfg.BotUsername == "" {
		cfg.BotUsername = api.Self.UserName
	}
	if cfg.ChannelID == 0 {
		return errors.New("CHANNEL_ID is not set")
	}

	tg := gateway.NewTelegram(api, cfg.ChannelID)
	engine, err := bootstrap.NewEngine(cfg, db, redisClient, tg)
	if err != nil {
		return err
	}

	b := bot.New(bot.Deps{
		Updates:      api,
		Messenger:    tg,
		Interactions: engine.Interactions,
		Comments:     engine.Comments,
		Library:      engine.Library,
		Sessions:     engine.Sessions,
		Links:        engine.Links,
		EventTimeout: cfg.EventTimeout(),
	})
	observability.Logger.Info("Bot authorized", slog.String("username", api.Self.UserName))
	return b.Run(ctx)
}
