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

	httptransport "github.com/estatehub/estate-service/internal/api/http"
	"github.com/estatehub/estate-service/internal/api/http/handlers"
	"github.com/estatehub/estate-service/internal/auth"
	"github.com/estatehub/estate-service/internal/config"
	"github.com/estatehub/estate-service/internal/events"
	"github.com/estatehub/estate-service/internal/notify"
	"github.com/estatehub/estate-service/internal/observability"
	"github.com/estatehub/estate-service/internal/persistence"
	"github.com/estatehub/estate-service/internal/repository"
	"github.com/estatehub/estate-service/internal/scheduler"
	"github.com/estatehub/estate-service/internal/service"
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
		if _, err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	transport, closeTransport := buildTransport(cfg.Notification, logger)
	defer closeTransport()
	notifier := notify.NewTemplateNotifier(transport, cfg.Notification.EmailFrom, cfg.Notification.DashboardURL)

	pool := pg.PoolHandle()
	landlordRepo := repository.NewLandlordRepository(pool)
	propertyRepo := repository.NewPropertyRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	agentRepo := repository.NewFieldAgentRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	activityService := service.NewActivityService(service.ActivityDependencies{
		ActivityRepo: activityRepo,
		PresenceRepo: userRepo,
		Gate:         presenceGate(redis, cfg.Scheduler.HeartbeatThrottle()),
		Logger:       logger,
	})
	landlordService := service.NewLandlordService(service.LandlordDependencies{
		LandlordRepo: landlordRepo,
		PropertyRepo: propertyRepo,
		UserRepo:     userRepo,
		Notifier:     notifier,
		Dispatcher:   dispatcher,
		Recorder:     metrics,
		Logger:       logger,
	})
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     userRepo,
		LandlordRepo: landlordRepo,
		Activity:     activityService,
		Logger:       logger,
	})
	propertyService := service.NewPropertyService(service.PropertyDependencies{
		PropertyRepo: propertyRepo,
		LandlordRepo: landlordRepo,
	})
	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:     userRepo,
		LandlordRepo: landlordRepo,
	})
	agentService := service.NewFieldAgentService(agentRepo)
	reportService := service.NewReportService(service.ReportDependencies{
		LandlordRepo: landlordRepo,
		PropertyRepo: propertyRepo,
		PresenceRepo: userRepo,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	sched, err := scheduler.New(logger, sweepJobs(cfg.Scheduler, activityService)...)
	if err != nil {
		logger.Fatal("failed to build scheduler", zap.Error(err))
	}
	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			logger.Fatal("failed to start scheduler", zap.Error(err))
		}
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Landlords:      handlers.NewLandlordsHandler(landlordService),
		Properties:     handlers.NewPropertiesHandler(propertyService),
		Users:          handlers.NewUsersHandler(userService),
		FieldAgents:    handlers.NewFieldAgentsHandler(agentService),
		Activities:     handlers.NewActivitiesHandler(activityService),
		Reports:        handlers.NewReportsHandler(reportService),
		Public:         handlers.NewPublicHandler(landlordService),
		AuthMiddleware: authMiddleware,
		Activity:       activityService,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sched.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// buildTransport prefers the broker, then direct SMTP, then the log.
func buildTransport(cfg config.NotificationConfig, logger *zap.Logger) (notify.Transport, func()) {
	if cfg.AMQPURL != "" {
		amqpTransport, err := notify.NewAMQPTransport(notify.AMQPConfig{
			URL:      cfg.AMQPURL,
			Exchange: cfg.Exchange,
			Queue:    cfg.Queue,
		})
		if err == nil {
			logger.Info("landlord emails queued via rabbitmq", zap.String("exchange", cfg.Exchange))
			return amqpTransport, func() { _ = amqpTransport.Close() }
		}
		logger.Error("rabbitmq unavailable; falling back", zap.Error(err))
	}
	if addr := cfg.SMTPAddr(); addr != "" {
		logger.Info("landlord emails sent via smtp", zap.String("addr", addr))
		return notify.NewSMTPTransport(addr, cfg.SMTPHost, cfg.SMTPUsername, cfg.SMTPPassword), func() {}
	}
	logger.Warn("no mail transport configured; landlord emails are only logged")
	return notify.NewLogTransport(logger.Named("mail")), func() {}
}

func presenceGate(redis *persistence.Redis, window time.Duration) service.PresenceGate {
	throttle := persistence.NewPresenceThrottle(redis, window)
	if throttle == nil {
		return nil
	}
	return throttle
}

func sweepJobs(cfg config.SchedulerConfig, activity *service.ActivityService) []scheduler.Job {
	return []scheduler.Job{
		{
			Name:         "presence-sweep",
			Interval:     cfg.PresenceInterval(),
			InitialDelay: cfg.PresenceInterval(),
			Run: func(ctx context.Context) error {
				_, err := activity.SweepInactive(ctx, cfg.OfflineThreshold())
				return err
			},
		},
		{
			Name:         "activity-retention",
			Interval:     cfg.RetentionInterval(),
			InitialDelay: cfg.RetentionDelay(),
			Run: func(ctx context.Context) error {
				_, err := activity.SweepOldLogs(ctx, cfg.RetentionDays)
				return err
			},
		},
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
