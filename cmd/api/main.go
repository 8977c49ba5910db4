package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/is0060hf/qa-web-system-sub002/internal/api/http"
	"github.com/is0060hf/qa-web-system-sub002/internal/api/http/handlers"
	"github.com/is0060hf/qa-web-system-sub002/internal/auth"
	"github.com/is0060hf/qa-web-system-sub002/internal/config"
	"github.com/is0060hf/qa-web-system-sub002/internal/events"
	"github.com/is0060hf/qa-web-system-sub002/internal/notify"
	"github.com/is0060hf/qa-web-system-sub002/internal/observability"
	"github.com/is0060hf/qa-web-system-sub002/internal/persistence"
	"github.com/is0060hf/qa-web-system-sub002/internal/repository"
	"github.com/is0060hf/qa-web-system-sub002/internal/service"
	"github.com/is0060hf/qa-web-system-sub002/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notify.NewRedisNotifier(redis, cfg.Notification.ChannelPrefix, logger).Register(dispatcher)

	store := repository.NewStore(pg.PoolHandle())
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	accessService := service.NewAccessService(store, logger)
	notificationService := service.NewNotificationService(store, dispatcher, logger)
	questionService := service.NewQuestionService(service.QuestionDependencies{
		Store:         store,
		Notifications: notificationService,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	deadlineService := service.NewDeadlineService(service.DeadlineDependencies{
		Store:         store,
		Notifications: notificationService,
		Logger:        logger,
		Metrics:       metrics,
		Concurrency:   cfg.Scheduler.Concurrency,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
		Hasher:   auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Logger:   logger,
	})

	if cfg.Scheduler.APIKey == "" {
		logger.Warn("SCHEDULER_API_KEY is empty; /internal endpoints reject every call")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Projects:       handlers.NewProjectsHandler(accessService),
		Questions:      handlers.NewQuestionsHandler(questionService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Internal:       handlers.NewInternalHandler(deadlineService, metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		SchedulerKey:   cfg.Scheduler.APIKey,
	})

	var scheduler *worker.DeadlineScheduler
	if cfg.Scheduler.Cron != "" {
		scheduler = worker.NewDeadlineScheduler(deadlineService, logger, cfg.Scheduler.Cron, cfg.Scheduler.Timeout())
		if err := scheduler.Start(); err != nil {
			logger.Fatal("failed to start deadline scheduler", zap.Error(err))
		}
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if scheduler != nil {
		scheduler.Stop()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
