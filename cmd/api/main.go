package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chat-assistant/backend/internal/api/handlers"
	"github.com/chat-assistant/backend/internal/cache"
	"github.com/chat-assistant/backend/internal/history"
	"github.com/chat-assistant/backend/internal/metrics"
	"github.com/chat-assistant/backend/internal/middleware/ratelimit"
	"github.com/chat-assistant/backend/internal/middleware/security"
	"github.com/chat-assistant/backend/internal/middleware/validation"
	"github.com/chat-assistant/backend/internal/profile"
	"github.com/chat-assistant/backend/internal/session"
	"github.com/chat-assistant/backend/internal/storage/sqlite"
	"github.com/chat-assistant/backend/internal/training"
	"github.com/chat-assistant/backend/pkg/config"
	appLogger "github.com/chat-assistant/backend/pkg/logger"
	"github.com/chat-assistant/backend/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting chat assistant API server")

	metrics.Init()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	rcfg := retry.DefaultConfig()
	rcfg.Logger = appLogger.Named("startup")
	sqliteClient, err := retry.DoWithResult(startCtx, rcfg, func(ctx context.Context) (*sqlite.Client, error) {
		return sqlite.NewClient(cfg.SQLite.Path)
	})
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}
	if err := training.Seed(startCtx, sqliteClient); err != nil {
		appLogger.Fatal("Failed to seed training data", zap.Error(err))
	}

	store := cache.Open(startCtx, cfg.Redis, appLogger.Named("cache"))
	defer store.Close()

	registry, err := profile.NewRegistry(cfg.Profiles)
	if err != nil {
		appLogger.Fatal("Failed to build chat profiles", zap.Error(err))
	}

	recorder := history.NewRecorder(sqliteClient, store, 256)
	manager := session.NewManager(registry, cfg.Sessions.IdleTTL,
		session.WithObserver(session.Observers{metrics.Observer{}, recorder}),
	)

	responder := training.NewResponder(sqliteClient, store, cfg.Redis.CacheTTL)
	fastResponder := training.NewFastResponder(store, cfg.Redis.CacheTTL)

	bgCtx, stopBackground := context.WithCancel(context.Background())
	background, bgCtx := errgroup.WithContext(bgCtx)
	background.Go(func() error {
		recorder.Run(bgCtx)
		return nil
	})
	background.Go(func() error {
		manager.Run(bgCtx, cfg.Sessions.SweepInterval)
		return nil
	})
	background.Go(func() error {
		trackActiveSessions(bgCtx, manager, cfg.Sessions.SweepInterval)
		return nil
	})

	app := fiber.New(fiber.Config{
		AppName:      "chat-assistant",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, X-Session-ID",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               appLogger.Named("ratelimit"),
		})
		defer limiter.Stop()
		app.Use(limiter.Middleware())
	}

	app.Use(validation.Middleware(validation.Config{
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		Logger:          appLogger.Named("validation"),
	}))

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	handlers.Register(app, api, handlers.Handlers{
		Sessions: handlers.NewSessionHandler(manager, sqliteClient, store, registry.Names()),
		Classify: handlers.NewClassifyHandler(registry),
		NLP:      handlers.NewNLPHandler(responder, fastResponder),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"sqlite": sqliteClient,
			"cache":  store,
		}),
		WebSocket: handlers.NewWebSocketHandler(manager),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr), zap.Strings("profiles", registry.Names()))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Warn("Server shutdown incomplete", zap.Error(err))
	}

	stopBackground()
	background.Wait()
	appLogger.Info("Server stopped", zap.Int64("history_dropped", recorder.Dropped()))
}

func trackActiveSessions(ctx context.Context, manager *session.Manager, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveSessions.Set(float64(manager.Len()))
		}
	}
}
