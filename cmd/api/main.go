package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/triage-service/internal/api/http"
	"github.com/spec-kit/triage-service/internal/api/http/handlers"
	"github.com/spec-kit/triage-service/internal/auth"
	"github.com/spec-kit/triage-service/internal/config"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/monitor"
	"github.com/spec-kit/triage-service/internal/observability"
	"github.com/spec-kit/triage-service/internal/persistence"
	"github.com/spec-kit/triage-service/internal/repository"
	"github.com/spec-kit/triage-service/internal/service"
	"github.com/spec-kit/triage-service/internal/sla"
	"github.com/spec-kit/triage-service/internal/triage"
	"github.com/spec-kit/triage-service/internal/worker"
)

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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	policy := sla.NewPolicy(cfg.SLA)
	if err := policy.Validate(); err != nil {
		logger.Fatal("invalid sla policy", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	broadcaster := events.NewBroadcaster(cfg.Events.SubscriberBuffer, metrics.DroppedEvents.Inc)
	defer broadcaster.Close()

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	exchangeRepo := repository.NewChatExchangeRepository(redis.Client)

	classifier := triage.NewClassifier(cfg.Triage)

	slaService := service.NewSLAService(cfg.SLA, service.SLADependencies{
		Policy:      policy,
		TicketRepo:  ticketRepo,
		Broadcaster: broadcaster,
		Metrics:     metrics,
		Logger:      logger,
	})
	escalationService := service.NewEscalationService(cfg.Chatbot, cfg.SLA, service.EscalationDependencies{
		Classifier:   classifier,
		TicketRepo:   ticketRepo,
		ExchangeRepo: exchangeRepo,
		SLAService:   slaService,
		Broadcaster:  broadcaster,
		Metrics:      metrics,
		Logger:       logger,
	})
	triageService := service.NewTriageService(cfg.SLA, service.TriageDependencies{
		Classifier:  classifier,
		SLAService:  slaService,
		TicketRepo:  ticketRepo,
		Broadcaster: broadcaster,
		Metrics:     metrics,
		Logger:      logger,
	})
	chatService := service.NewChatService(cfg.SLA, exchangeRepo, escalationService, logger)
	monitorService := service.NewMonitorService(monitor.NewMonitor(cfg.Monitor, logger), broadcaster, metrics, logger)
	notificationService := service.NewNotificationService(broadcaster, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLMinutes)
	authMiddleware := auth.NewMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Triage:         handlers.NewTriageHandler(triageService, slaService),
		Chat:           handlers.NewChatHandler(chatService),
		Monitor:        handlers.NewMonitorHandler(monitorService),
		Events:         handlers.NewEventsHandler(broadcaster, logger),
		Metrics:        metrics,
		AuthMiddleware: authMiddleware,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slaWorker := worker.NewSLAWorker(slaService, escalationService, cfg.SLA.ScanInterval, logger)
		return slaWorker.Run(groupCtx)
	})
	group.Go(func() error {
		return notificationService.Run(groupCtx)
	})
	group.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		return app.Listen(cfg.App.Addr())
	})

	waitForShutdown(groupCtx, logger)
	cancel()

	_ = app.Shutdown()
	broadcaster.Close()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("reason", "worker exited"))
	}
}
