package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/config"
	"github.com/cris-tech/gestao-api/internal/database"
	"github.com/cris-tech/gestao-api/internal/http/handler"
	"github.com/cris-tech/gestao-api/internal/http/router"
	"github.com/cris-tech/gestao-api/internal/identity"
	"github.com/cris-tech/gestao-api/internal/jobs"
	"github.com/cris-tech/gestao-api/internal/logger"
	"github.com/cris-tech/gestao-api/internal/messaging"
	"github.com/cris-tech/gestao-api/internal/render"
	"github.com/cris-tech/gestao-api/internal/repository"
	"github.com/cris-tech/gestao-api/internal/service"
	"github.com/cris-tech/gestao-api/internal/storage"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// External service clients
	identityClient := identity.NewClient(&cfg.Identity, log)
	tokenParser := identity.NewTokenParser(cfg.Identity.JWTSecret)
	renderClient := render.NewClient(&cfg.Render, log)
	messagingClient := messaging.NewClient(&cfg.Messaging, log)

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	clientRepo := repository.NewClientRepository(db)
	orderRepo := repository.NewServiceOrderRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	layoutRepo := repository.NewLayoutRepository(db)
	seqRepo := repository.NewNumberSequenceRepository(db)

	// Services
	bootstrap := auth.NewBootstrap(identityClient, profileRepo, log)
	docImageService := service.NewDocImageService(
		orderRepo,
		quoteRepo,
		renderClient,
		messagingClient,
		cfg.Render.OrderTemplate,
		cfg.Render.QuoteTemplate,
		log,
	)
	clientService := service.NewClientService(clientRepo, log)
	orderService := service.NewOrderService(orderRepo, clientRepo, seqRepo, docImageService, log)
	quoteService := service.NewQuoteService(quoteRepo, clientRepo, seqRepo, docImageService, log)
	userService := service.NewUserService(identityClient, profileRepo, log)
	layoutService := service.NewLayoutService(layoutRepo, log)

	// Handlers
	authHandler := handler.NewAuthHandler(bootstrap, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	userHandler := handler.NewUserHandler(userService, log)
	layoutHandler := handler.NewLayoutHandler(layoutService, log)
	uploadHandler := handler.NewUploadHandler(fileStorage, cfg.Storage.MaxUploadSizeMB, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		tokenParser,
		bootstrap,
		authHandler,
		clientHandler,
		orderHandler,
		quoteHandler,
		userHandler,
		layoutHandler,
		uploadHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	if err := jobs.RegisterGenerationReaperJob(
		scheduler,
		orderRepo,
		quoteRepo,
		log,
		cfg.Jobs.ReaperSchedule,
		cfg.Jobs.GenerationTimeout(),
	); err != nil {
		log.Error("Failed to register generation reaper job", zap.Error(err))
	} else {
		scheduler.Start()
		log.Info("Scheduler started",
			zap.String("cron_expr", cfg.Jobs.ReaperSchedule),
			zap.Duration("generation_timeout", cfg.Jobs.GenerationTimeout()),
		)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
