package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/game-rental-service/internal/api/http"
	"github.com/spec-kit/game-rental-service/internal/api/http/handlers"
	"github.com/spec-kit/game-rental-service/internal/blob"
	"github.com/spec-kit/game-rental-service/internal/config"
	"github.com/spec-kit/game-rental-service/internal/email"
	"github.com/spec-kit/game-rental-service/internal/events"
	"github.com/spec-kit/game-rental-service/internal/observability"
	"github.com/spec-kit/game-rental-service/internal/payment"
	"github.com/spec-kit/game-rental-service/internal/persistence"
	"github.com/spec-kit/game-rental-service/internal/repository"
	"github.com/spec-kit/game-rental-service/internal/service"
	"github.com/spec-kit/game-rental-service/internal/verification"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	gameRepo := repository.NewGameRepository(pool)
	changeRequestRepo := repository.NewChangeRequestRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	feedbackRepo := repository.NewFeedbackRepository(pool)

	codeStore := verification.NewStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	sender := email.NewSender(cfg.SMTP, logger)
	notifications := service.NewNotificationService(dispatcher, sender, logger)
	notifications.RegisterHandlers()

	var blobRemover blob.Remover = blob.NoopRemover{}
	if cfg.S3.AccessKeyID != "" {
		s3Remover, err := blob.NewS3Remover(ctx, cfg.S3)
		if err != nil {
			logger.Fatal("failed to init blob storage", zap.Error(err))
		}
		blobRemover = s3Remover
	} else {
		logger.Warn("blob storage not configured; image cleanup disabled")
	}

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		CodeStore:  codeStore,
		Dispatcher: dispatcher,
	})
	accountService := service.NewAccountService(*cfg, service.AccountDependencies{
		UserRepo:   userRepo,
		OrderRepo:  orderRepo,
		CodeStore:  codeStore,
		Dispatcher: dispatcher,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		GameRepo:          gameRepo,
		ChangeRequestRepo: changeRequestRepo,
		FeedbackRepo:      feedbackRepo,
		UserRepo:          userRepo,
	})
	adminService := service.NewAdminService(*cfg, service.AdminDependencies{
		UserRepo:          userRepo,
		GameRepo:          gameRepo,
		ChangeRequestRepo: changeRequestRepo,
		CodeStore:         codeStore,
		BlobRemover:       blobRemover,
		Dispatcher:        dispatcher,
	})
	paymentService := service.NewPaymentService(*cfg, service.PaymentDependencies{
		Provider:    payment.NewStripeProvider(cfg.Stripe.SecretKey),
		UserRepo:    userRepo,
		GameRepo:    gameRepo,
		AccountRepo: accountRepo,
		OrderRepo:   orderRepo,
		CodeStore:   codeStore,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:     handlers.NewAuthHandler(authService),
		Users:    handlers.NewUsersHandler(accountService),
		Games:    handlers.NewGamesHandler(catalogService),
		Payments: handlers.NewPaymentsHandler(paymentService),
		Admins:   handlers.NewAdminsHandler(adminService),
		Tokens:   authService.TokenManager(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
