package router

import (
	"encoding/json"
	"net/http"

	"github.com/cris-tech/gestao-api/internal/auth"
	"github.com/cris-tech/gestao-api/internal/config"
	"github.com/cris-tech/gestao-api/internal/database"
	"github.com/cris-tech/gestao-api/internal/http/handler"
	"github.com/cris-tech/gestao-api/internal/http/middleware"
	"github.com/cris-tech/gestao-api/internal/identity"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg           *config.Config
	logger        *zap.Logger
	db            *gorm.DB
	tokenParser   *identity.TokenParser
	bootstrap     *auth.Bootstrap
	authHandler   *handler.AuthHandler
	clientHandler *handler.ClientHandler
	orderHandler  *handler.OrderHandler
	quoteHandler  *handler.QuoteHandler
	userHandler   *handler.UserHandler
	layoutHandler *handler.LayoutHandler
	uploadHandler *handler.UploadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	tokenParser *identity.TokenParser,
	bootstrap *auth.Bootstrap,
	authHandler *handler.AuthHandler,
	clientHandler *handler.ClientHandler,
	orderHandler *handler.OrderHandler,
	quoteHandler *handler.QuoteHandler,
	userHandler *handler.UserHandler,
	layoutHandler *handler.LayoutHandler,
	uploadHandler *handler.UploadHandler,
) *Router {
	return &Router{
		cfg:           cfg,
		logger:        logger,
		db:            db,
		tokenParser:   tokenParser,
		bootstrap:     bootstrap,
		authHandler:   authHandler,
		clientHandler: clientHandler,
		orderHandler:  orderHandler,
		quoteHandler:  quoteHandler,
		userHandler:   userHandler,
		layoutHandler: layoutHandler,
		uploadHandler: uploadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(middleware.RateLimit(&rt.cfg.RateLimit, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
			})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
		})
	})

	// Locally stored uploads are served by the API itself
	if rt.cfg.Storage.Mode == "local" {
		fileServer := http.FileServer(http.Dir(rt.cfg.Storage.LocalBasePath))
		r.Handle("/files/*", http.StripPrefix("/files/", fileServer))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)
		r.Post("/auth/verify", rt.authHandler.Verify)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.tokenParser, rt.bootstrap, rt.logger))

			r.Get("/auth/me", rt.authHandler.Me)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.Get)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			r.Route("/service-orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Post("/", rt.orderHandler.Create)
				r.Get("/{id}", rt.orderHandler.Get)
				r.Put("/{id}", rt.orderHandler.Update)
				r.Patch("/{id}/status", rt.orderHandler.UpdateStatus)
				r.Post("/{id}/image/retry", rt.orderHandler.RetryImage)
				r.Delete("/{id}", rt.orderHandler.Delete)
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.Get)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Patch("/{id}/status", rt.quoteHandler.UpdateStatus)
				r.Post("/{id}/image/retry", rt.quoteHandler.RetryImage)
				r.Post("/{id}/photos", rt.quoteHandler.AddPhoto)
				r.Delete("/{id}/photos/{photoId}", rt.quoteHandler.DeletePhoto)
				r.Delete("/{id}", rt.quoteHandler.Delete)
			})

			r.Route("/layouts", func(r chi.Router) {
				r.Get("/", rt.layoutHandler.List)
				r.Post("/", rt.layoutHandler.Create)
				r.Get("/{id}", rt.layoutHandler.Get)
				r.Put("/{id}", rt.layoutHandler.Update)
				r.Delete("/{id}", rt.layoutHandler.Delete)
				r.Post("/{id}/dispatch", rt.layoutHandler.Dispatch)
			})

			r.Post("/upload", rt.uploadHandler.Upload)

			// User administration is master-only
			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireMaster)
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Put("/{id}", rt.userHandler.Update)
				r.Delete("/{id}", rt.userHandler.Delete)
			})
		})
	})

	return r
}
