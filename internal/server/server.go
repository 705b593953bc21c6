// Package server exposes the operational HTTP surface of the bot: liveness,
// readiness and Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"channelpost/internal/database"
	"channelpost/internal/observability"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide HTTP metrics middleware. The collectors
// can only be registered once per registry.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWithRegistry(prometheus.DefaultRegisterer, "channelpost", "http", "", nil)
	})
	return prom
}

// Server holds the dependencies probed by the readiness check.
type Server struct {
	db    *gorm.DB
	redis *redis.Client
	app   *fiber.App
}

// New builds the ops app. redisClient may be nil when the in-process
// fallback store is in use.
func New(db *gorm.DB, redisClient *redis.Client) *Server {
	s := &Server{db: db, redis: redisClient}

	app := fiber.New(fiber.Config{
		AppName:               "channelpost-ops",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	p := metrics()
	p.RegisterAt(app, "/metrics")
	app.Use(p.Middleware)

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database answers. Redis is optional:
// without it the bot runs on the in-process store and reports "fallback".
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "fallback"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	observability.Logger.Info("Ops server listening", slog.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
