package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/commercelens/backend/internal/application/ingest"
	"github.com/commercelens/backend/internal/domain/mapping"
	"github.com/commercelens/backend/internal/domain/schema"
	"github.com/commercelens/backend/internal/infrastructure/config"
	"github.com/commercelens/backend/internal/infrastructure/learning"
	"github.com/commercelens/backend/internal/infrastructure/logger"
	"github.com/commercelens/backend/internal/interfaces/http/handler"
	"github.com/commercelens/backend/internal/interfaces/http/middleware"
	"github.com/commercelens/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CommerceLens Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Build the platform registry, optionally extended by a catalog file
	registryOpts := []schema.RegistryOption{
		schema.WithDetectionThreshold(cfg.Ingest.PlatformDetectionThreshold),
	}
	if cfg.Ingest.CatalogPath != "" {
		templates, err := schema.LoadCatalogFile(cfg.Ingest.CatalogPath)
		if err != nil {
			log.Fatal("Failed to load platform catalog", zap.Error(err))
		}
		registryOpts = append(registryOpts, schema.WithTemplates(templates))
		log.Info("Platform catalog loaded",
			zap.String("path", cfg.Ingest.CatalogPath),
			zap.Int("templates", len(templates)),
		)
	}
	registry, err := schema.NewRegistry(registryOpts...)
	if err != nil {
		log.Fatal("Failed to build platform registry", zap.Error(err))
	}

	// Open the learning store when enabled; without it mappings are
	// still inferred, just not remembered across uploads.
	var store mapping.LearningStore
	if cfg.Learning.Enabled {
		gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
		db, err := learning.NewDatabaseWithLogger(cfg.Learning.DBPath, gormLog)
		if err != nil {
			log.Fatal("Failed to open learning database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing learning database", zap.Error(err))
			}
		}()
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to migrate learning database", zap.Error(err))
		}
		store = learning.NewGormStore(db)
		log.Info("Learning store ready", zap.String("path", cfg.Learning.DBPath))
	}

	service := ingest.NewService(cfg.Ingest, registry, store, log)

	// Set gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Body size limit covers the CSV uploads
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewSystemHandler(cfg.App.Name, version)).
		Register(handler.NewIngestHandler(service, cfg.Ingest.MaxUploadRows)).
		Register(handler.NewSchemaHandler(registry)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
