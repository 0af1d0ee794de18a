package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookmarks/internal/bing"
	"bookmarks/internal/config"
	"bookmarks/internal/database"
	"bookmarks/internal/handlers"
	"bookmarks/internal/logger"
	"bookmarks/internal/middleware"
	"bookmarks/internal/render"
	"bookmarks/internal/repository"
	"bookmarks/internal/service"

	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Logging)
	appLogger := logger.Default()

	appLogger.Info("Starting bookmarks server on port %d (env: %s)", cfg.Port, cfg.Environment)

	// Initialize database
	appLogger.Info("Initializing database: %s", cfg.DatabasePath)
	db, err := database.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		appLogger.Error("Failed to initialize database: %v", err)
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	appLogger.Info("Running database migrations")
	if err := database.Migrate(db); err != nil {
		appLogger.Error("Failed to run migrations: %v", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}
	appLogger.Info("Database migrations completed successfully")

	// Initialize repositories
	appLogger.Info("Initializing repositories")
	bookmarkRepo := repository.NewBookmarkRepository(db, appLogger)
	categoryRepo := repository.NewCategoryRepository(db, appLogger)
	tagRepo := repository.NewTagRepository(db, appLogger)
	cacheRepo := repository.NewCacheRepository(db, appLogger)

	// Initialize services
	appLogger.Info("Initializing services")
	markdown := render.NewMarkdown()
	bingClient := bing.NewClient(cfg.BingAPIURL, cfg.BingBaseURL, appLogger)

	bookmarkService := service.NewBookmarkService(bookmarkRepo, categoryRepo, markdown, cfg.DefaultPageSize, appLogger)
	taxonomyService := service.NewTaxonomyService(categoryRepo, tagRepo, appLogger)
	transferService := service.NewTransferService(bookmarkRepo, categoryRepo, tagRepo, appLogger)
	imageService := service.NewImageService(cacheRepo, bingClient, cfg.ImageCacheTTL, appLogger)

	// Initialize handlers
	appLogger.Info("Initializing handlers")
	handler := handlers.NewHandler(bookmarkService, taxonomyService, transferService, imageService, cfg, appLogger)

	// Setup router
	appLogger.Info("Setting up HTTP router (static files from %s)", cfg.StaticDir)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	// Setup server
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: middleware.Chain(router,
			middleware.Recoverer,
			middleware.RequestID,
			middleware.AccessLog(appLogger),
			middleware.CORS(),
		),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		appLogger.Info("Starting HTTP server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start: %v", err)
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Received shutdown signal, initiating graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appLogger.Info("Shutting down HTTP server (timeout: 30s)")
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown: %v", err)
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server shutdown completed successfully")
}
