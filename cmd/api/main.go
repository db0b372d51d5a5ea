package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/config"
	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/database"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/http/handlers"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/stripe"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/mail"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/queue"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/worker"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Database
	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(db, cfg.MigrationsPath, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// 2. Repositories
	leadRepo := database.NewLeadRepository(db)
	companyRepo := database.NewCompanyRepository(db)
	contactRepo := database.NewContactRepository(db)
	dealRepo := database.NewDealRepository(db)
	productRepo := database.NewProductRepository(db)
	priceRepo := database.NewPriceRepository(db)
	activityRepo := database.NewActivityRepository(db)

	// 3. Activity queue. Without a broker activities are written inline.
	var activities usecase.ActivityLogger = activityRepo
	var amqpConn *amqp091.Connection
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		defer rabbitMQ.Close()
		amqpConn = rabbitMQ.Conn

		activities = queue.NewActivityProducer(rabbitMQ.Ch, activityRepo, logger)

		consumerCh, err := rabbitMQ.NewConsumerChannel(cfg.RabbitMQ.Prefetch)
		if err != nil {
			logger.Fatal("failed to open consumer channel", zap.Error(err))
		}
		activityWorker := queue.NewWorker(consumerCh, activityRepo, metrics, logger)
		go func() {
			if err := activityWorker.Start(ctx, queue.QueueName); err != nil {
				logger.Error("activity worker exited", zap.Error(err))
			}
		}()
	} else {
		logger.Info("RABBITMQ_URL not set, writing activities synchronously")
	}

	// 4. Gateways
	stripeClient := stripe.NewClient(stripe.Config{
		SecretKey: cfg.Stripe.SecretKey,
		Timeout:   cfg.Stripe.Timeout,
	}, logger)
	mailSender := mail.NewEmailSender(mail.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		User:     cfg.Mail.User,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		SalesTo:  cfg.Mail.SalesTo,
	}, logger)

	// 5. UseCases
	scorer := usecase.NewLeadScorer(leadRepo, metrics, logger)
	createLeadUC := usecase.NewCreateLeadUseCase(leadRepo, scorer, activities, logger)
	updateLeadUC := usecase.NewUpdateLeadUseCase(leadRepo, scorer, activities, logger)
	leadQueryUC := usecase.NewLeadQueryUseCase(leadRepo)
	convertLeadUC := usecase.NewConvertLeadUseCase(
		leadRepo, companyRepo, contactRepo, dealRepo, activities, mailSender, metrics, logger,
	)
	suggestUC := usecase.NewSuggestMatchesUseCase(productRepo, stripeClient, logger)
	applyUC := usecase.NewApplyMappingsUseCase(productRepo, priceRepo, stripeClient, activities, metrics, logger)
	productUC := usecase.NewProductUseCase(productRepo, priceRepo, stripeClient, logger)

	if stripeClient.Configured() && cfg.Stripe.SyncInterval > 0 {
		go worker.NewPriceSyncWorker(productUC, cfg.Stripe.SyncInterval, logger).Start(ctx)
	}

	// 6. Handlers
	routerCfg := handlers.RouterConfig{
		JWTSecret:   []byte(cfg.Auth.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     metrics,
		Logger:      logger,
		Leads:       handlers.NewLeadHandler(createLeadUC, updateLeadUC, leadQueryUC, convertLeadUC, logger),
		Catalog:     handlers.NewCatalogHandler(suggestUC, applyUC, logger),
		Products:    handlers.NewProductHandler(productUC, logger),
		Health:      handlers.NewHealthHandler(db, amqpConn, stripeClient.Configured(), version),
	}

	if cfg.Webhook.Enabled() {
		owner := entity.Actor{
			UserID:         cfg.Webhook.OwnerID,
			OrganizationID: cfg.Webhook.OrganizationID,
			Role:           "member",
		}
		captureUC := usecase.NewCaptureLeadsUseCase(createLeadUC, owner, logger)
		routerCfg.Webhooks = handlers.NewWebhookHandler(captureUC, cfg.Webhook.Token, logger)
		go routerCfg.Webhooks.RateLimiter.Cleanup(ctx, 3*time.Minute, 10*time.Minute)
	}

	// 7. Server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
