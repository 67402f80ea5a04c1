package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/hotel-service/internal/api/http"
	"github.com/spec-kit/hotel-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-service/internal/auth"
	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/events"
	"github.com/spec-kit/hotel-service/internal/media"
	"github.com/spec-kit/hotel-service/internal/notify"
	"github.com/spec-kit/hotel-service/internal/observability"
	"github.com/spec-kit/hotel-service/internal/persistence"
	"github.com/spec-kit/hotel-service/internal/realtime"
	"github.com/spec-kit/hotel-service/internal/repository"
	"github.com/spec-kit/hotel-service/internal/service"
	"github.com/spec-kit/hotel-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics("hotel")

	pool := pg.PoolHandle()
	repos := repository.NewRepositories(pool)
	txRunner := repository.NewTxRunner(pool)

	images, err := media.NewLocalStore(cfg.Media.Dir, cfg.Media.BaseURL, cfg.Media.MaxWidth)
	if err != nil {
		logger.Fatal("failed to prepare media dir", zap.Error(err))
	}

	sender, err := notify.NewSender(cfg.Notification, logger)
	if err != nil {
		logger.Fatal("failed to configure mail sender", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	publisher := realtime.NewPublisher(redis.Client, cfg.Realtime.Channel)
	notifications := service.NewNotificationService(dispatcher, publisher, repos.Notifications, logger)
	notifications.RegisterHandlers()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{Repos: repos, Tx: txRunner, Logger: logger})
	resolver := auth.NewResolver(authService.TokenManager(), repos.Users, repos.Staff)
	assignments := service.NewAssignmentService(cfg.Assignment, service.AssignmentDependencies{
		Tx:      txRunner,
		Metrics: metrics,
		Logger:  logger,
	})
	orders := service.NewOrderService(service.OrderDependencies{
		Repos:       repos,
		Tx:          txRunner,
		Assignments: assignments,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	tasks := service.NewTaskService(cfg.Notification, service.TaskDependencies{
		Repos:       repos,
		Tx:          txRunner,
		Assignments: assignments,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	bookings := service.NewBookingService(service.BookingDependencies{
		Repos:     repos,
		Tx:        txRunner,
		HotelName: cfg.App.Name,
		Logger:    logger,
	})

	outbox := worker.NewOutboxWorker(txRunner, sender, cfg.Outbox, metrics, logger)
	go outbox.Start(ctx)

	hub := realtime.NewHub(logger)
	go hub.Run()
	defer hub.Stop()
	if sub, err := hub.Subscribe(ctx, redis.Client, cfg.Realtime.Channel); err != nil {
		logger.Warn("realtime relay disabled", zap.Error(err))
	} else {
		go hub.Relay(ctx, sub)
	}

	gateway := realtime.NewGateway(hub, resolver, repos.Bookings, cfg.Realtime.AllowedOrigins, logger)
	gatewayServer := &http.Server{
		Addr:              cfg.Realtime.Addr,
		Handler:           gateway.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := gatewayServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("realtime gateway listen", zap.Error(err))
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		BodyLimit:             cfg.Media.MaxUpload,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Static(cfg.Media.BaseURL, images.Dir())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService),
		Staff:          handlers.NewStaffHandler(authService, service.NewStaffService(cfg.Auth, repos.Staff)),
		Rooms:          handlers.NewRoomsHandler(service.NewRoomService(repos, images, logger)),
		Menu:           handlers.NewMenuHandler(service.NewMenuService(repos.Menu)),
		Bookings:       handlers.NewBookingsHandler(bookings),
		Orders:         handlers.NewOrdersHandler(orders),
		Tasks:          handlers.NewTasksHandler(tasks, service.NewReportService(repos)),
		Chat:           handlers.NewChatHandler(service.NewChatService(repos, dispatcher, logger)),
		Notifications:  handlers.NewNotificationsHandler(notifications),
		AuthMiddleware: auth.NewAuthMiddleware(resolver),
		Limiter:        httptransport.NewRateLimiter(cfg.RateLimit),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("realtime", cfg.Realtime.Addr))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := gatewayServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("realtime gateway shutdown", zap.Error(err))
	}
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
