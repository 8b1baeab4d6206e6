package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/kursadbilgin/folio-engine/internal/config"
	"github.com/kursadbilgin/folio-engine/internal/dispatch"
	"github.com/kursadbilgin/folio-engine/internal/handler"
	"github.com/kursadbilgin/folio-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/folio-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/folio-engine/internal/infra/redis"
	"github.com/kursadbilgin/folio-engine/internal/integration"
	"github.com/kursadbilgin/folio-engine/internal/observability"
	"github.com/kursadbilgin/folio-engine/internal/provider"
	"github.com/kursadbilgin/folio-engine/internal/queue"
	"github.com/kursadbilgin/folio-engine/internal/repository"
	"github.com/kursadbilgin/folio-engine/internal/service"
	"github.com/kursadbilgin/folio-engine/internal/transport"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}
	defer postgresql.Close(db) //nolint:errcheck

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	rdb, err := infraredis.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	posts := repository.NewGormPostRepo(db)
	projects := repository.NewGormProjectRepo(db)
	subscribers := repository.NewGormSubscriberRepo(db)

	mailingList, err := provider.NewMailingListProvider(provider.MailingListConfig{
		APIURL: cfg.MailAPIURL,
		APIKey: cfg.MailAPIKey,
		From:   cfg.MailFrom,
	}, subscribers, nil)
	if err != nil {
		logger.Fatal("mailing-list provider initialization failed", zap.Error(err))
	}
	mailingList.SetLogger(logger)
	github := provider.NewGitHubProvider(provider.GitHubConfig{
		APIURL:   cfg.GitHubAPIURL,
		Username: cfg.GitHubUsername,
		Token:    cfg.GitHubToken,
	})
	linkedin := provider.NewLinkedInProvider(provider.LinkedInConfig{
		APIURL:      cfg.LinkedInAPIURL,
		AccessToken: cfg.LinkedInAccessToken,
		ProfileURL:  cfg.LinkedInProfileURL,
	})

	registry, err := integration.NewRegistry(
		[]provider.Provider{github, linkedin, mailingList},
		integration.WithProbeTimeout(cfg.IntegrationTestTimeout),
		integration.WithLogger(logger),
		integration.WithMetrics(metrics),
	)
	if err != nil {
		logger.Fatal("integration registry initialization failed", zap.Error(err))
	}
	for _, s := range registry.AggregateStatus() {
		logger.Info("integration status", zap.String("provider", s.Name), zap.String("status", s.Status.String()))
	}

	engineOpts := []dispatch.Option{
		dispatch.WithConcurrency(cfg.DispatchConcurrency),
		dispatch.WithSendTimeout(cfg.DispatchSendTimeout),
		dispatch.WithLogger(logger),
		dispatch.WithMetrics(metrics),
	}
	if cfg.DispatchRateLimit > 0 {
		limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.DispatchRateLimit)
		if err != nil {
			logger.Fatal("rate limiter initialization failed", zap.Error(err))
		}
		engineOpts = append(engineOpts, dispatch.WithRateLimiter(limiter))
	}
	engine, err := dispatch.NewEngine(mailingList, mailingList, engineOpts...)
	if err != nil {
		logger.Fatal("dispatch engine initialization failed", zap.Error(err))
	}

	checks := []handler.ReadinessCheck{
		{Name: "postgres", Ping: func(ctx context.Context) error { return postgresql.Ping(ctx, db) }},
		{Name: "redis", Ping: func(ctx context.Context) error { return infraredis.Ping(ctx, rdb) }},
	}

	var publisher queue.Publisher
	if cfg.RabbitMQURL != "" {
		mq, err := queue.NewRabbitMQ(ctx, cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, dispatch events disabled", zap.Error(err))
		} else {
			mqPublisher := queue.NewRabbitMQPublisher(mq)
			defer mqPublisher.Close() //nolint:errcheck
			publisher = mqPublisher
			checks = append(checks, handler.ReadinessCheck{Name: "rabbitmq", Ping: mq.Ping})
		}
	}

	contentService, err := service.NewContentService(posts, projects, logger)
	if err != nil {
		logger.Fatal("content service initialization failed", zap.Error(err))
	}
	contentService.SetMetrics(metrics)

	newsletterService, err := service.NewNewsletterService(engine, publisher, logger)
	if err != nil {
		logger.Fatal("newsletter service initialization failed", zap.Error(err))
	}

	subscriberService, err := service.NewSubscriberService(mailingList, logger)
	if err != nil {
		logger.Fatal("subscriber service initialization failed", zap.Error(err))
	}

	cache, err := infraredis.NewResponseCache(rdb, cfg.ProfileCacheTTL)
	if err != nil {
		logger.Fatal("response cache initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               "folio-engine",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(handler.RequestContext())
	app.Use(metrics.HTTPMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, checks...)

	public := app.Group("/v1")
	admin := app.Group("/v1/admin", handler.AdminAuth(cfg.AdminAPIToken))

	if err := handler.RegisterContentRoutes(public, admin, contentService); err != nil {
		logger.Fatal("content routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterSubscriberRoutes(public, subscriberService); err != nil {
		logger.Fatal("subscriber routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterNewsletterRoutes(admin, newsletterService); err != nil {
		logger.Fatal("newsletter routes registration failed", zap.Error(err))
	}
	if err := handler.RegisterIntegrationRoutes(public, admin, registry, cache, logger); err != nil {
		logger.Fatal("integration routes registration failed", zap.Error(err))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	}()

	logger.Info("folio-engine api started", zap.Int("port", cfg.APIPort))

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("http server stopped", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	logger.Info("folio-engine api stopped")
}
