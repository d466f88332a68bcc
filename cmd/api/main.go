package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/qcbd/app-beneficiary/docs"
	"github.com/qcbd/app-beneficiary/internal/config"
	"github.com/qcbd/app-beneficiary/internal/document"
	"github.com/qcbd/app-beneficiary/internal/handlers"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/observability"
	"github.com/qcbd/app-beneficiary/internal/redisclient"
	"github.com/qcbd/app-beneficiary/internal/services"
	"github.com/qcbd/app-beneficiary/internal/store"
	"github.com/qcbd/app-beneficiary/internal/utils"
)

// @title           Qatar Charity Bangladesh Beneficiary API
// @version         1.0
// @description     API for registering orphan sponsorship applications, collecting their supporting documents and recording staff decisions.

// @host      localhost:8080
// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name applications
// @tag.description Orphan application intake and decisions

// @tag.name documents
// @tag.description Supporting documents of an application

// @tag.name users
// @tag.description Staff accounts and their avatar and signature images

// @tag.name export
// @tag.description CSV export of applications

// @tag.name health
// @tag.description Health check operations

func main() {
	// Initialize logger first
	if err := logging.InitLogger(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() { _ = logging.Logger.Sync() }()

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}
	cfg := config.AppConfig

	// Initialize observability
	observability.InitTracer()
	defer observability.ShutdownTracer()

	// Initialize database connections
	if err := config.InitMongoDB(); err != nil {
		logging.Logger.Fatal("failed to initialize MongoDB", zap.Error(err))
	}
	config.InitRedis()

	if err := config.StartIndexMaintenance(); err != nil {
		logging.Logger.Error("failed to start index maintenance", zap.Error(err))
	}

	if cfg.AuditLogsEnabled {
		utils.InitAuditWorker(utils.NewMongoAuditWriter(config.MongoDB.Collection(cfg.AuditLogsCollection)),
			cfg.AuditWorkerCount, cfg.AuditBufferSize)
	}

	documents, err := store.NewGridFSDocumentStore(config.MongoDB, cfg.DocumentBucket)
	if err != nil {
		logging.Logger.Fatal("failed to open document bucket", zap.Error(err))
	}
	media, err := store.NewGridFSMediaStore(config.MongoDB, cfg.MediaBucket)
	if err != nil {
		logging.Logger.Fatal("failed to open media bucket", zap.Error(err))
	}
	applications := store.NewMongoApplicationStore(config.MongoDB.Collection(cfg.ApplicationCollection))
	users := store.NewMongoUserStore(config.MongoDB.Collection(cfg.UserCollection))
	cache := redisclient.NewStringCache(config.Redis)

	logger := logging.Logger
	signatureService := services.NewSignatureService(media, cfg.PublicBaseURL, cache, cfg.SignatureCacheTTL, logger.Named("signatures"))
	generator := document.NewGenerator(signatureService)
	applicationService := services.NewApplicationService(applications, documents, generator, logger.Named("applications"),
		services.WithApplicationCache(cache, cfg.ApplicationCacheTTL))
	documentService := services.NewDocumentService(documents, applicationService, cfg.MaxUploadSize, logger.Named("documents"))
	userService := services.NewUserService(users, media, signatureService, cfg.MaxUploadSize, logger.Named("users"))
	exportService := services.NewExportService(applications, logger.Named("export"))

	healthService := services.NewHealthService(map[string]services.Pinger{
		"mongodb": services.PingerFunc(func(ctx context.Context) error {
			return config.MongoDB.Client().Ping(ctx, nil)
		}),
		"redis": services.PingerFunc(func(ctx context.Context) error {
			return config.Redis.Ping(ctx).Err()
		}),
	}, 30*time.Second, logger.Named("health"))
	go healthService.StartMonitoring()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		ClientID:           cfg.IdentityClientID,
		MaxMultipartMemory: cfg.MaxUploadSize,
		Swagger:            cfg.Environment != "production",
	}, handlers.Handlers{
		Applications: handlers.NewApplicationHandlers(logger, applicationService, exportService),
		Documents:    handlers.NewDocumentHandlers(logger, documentService),
		Users:        handlers.NewUserHandlers(logger, userService),
		Health:       handlers.NewHealthHandlers(healthService),
	})

	// Create server with timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", cfg.Port),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	healthService.Stop()
	config.StopIndexMaintenance()
	utils.StopAuditWorker()
	config.CloseConnections(ctx)

	logging.Logger.Info("server exited gracefully")
}
