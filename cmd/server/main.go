package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Maxencejules/payflow/internal/adapter"
	"github.com/Maxencejules/payflow/internal/application"
	"github.com/Maxencejules/payflow/internal/config"
	"github.com/Maxencejules/payflow/internal/database"
	"github.com/Maxencejules/payflow/internal/events"
	"github.com/Maxencejules/payflow/internal/handler"
	"github.com/Maxencejules/payflow/internal/logging"
	"github.com/Maxencejules/payflow/internal/middleware"
	"github.com/Maxencejules/payflow/internal/repository"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logging.NewNamed(cfg.AppEnv, "payflow-api")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting payflow-api", zap.String("port", cfg.Port))

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.PaymentModel{}); err != nil {
			zapLogger.Fatal("failed to auto-migrate", zap.Error(err))
		}
		zapLogger.Info("database migration completed (dev auto-migrate)")
	}

	// Initialize Kafka producer
	producer := events.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
	defer producer.Close()

	// Initialize provider gateway (simulation for development)
	provider := adapter.NewSimulatedProvider(adapter.SimulatedProviderOptions{
		AuthorizeFailRate:  cfg.ProviderConfig.AuthorizeFailRate,
		CaptureDeclineRate: cfg.ProviderConfig.CaptureDeclineRate,
		Latency:            cfg.ProviderConfig.Latency,
	}, zapLogger)

	// Initialize repository and application service
	paymentRepo := repository.NewPaymentRepository(db)
	paymentService := application.NewPaymentService(paymentRepo, provider, producer, zapLogger)

	// Initialize HTTP handlers
	paymentHandler := handler.NewPaymentHandler(paymentService)
	healthHandler := handler.NewHealthHandler(paymentService)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(cors.Default())

	healthHandler.RegisterRoutes(router)

	apiV1 := router.Group("/api/v1")
	paymentHandler.RegisterRoutes(apiV1)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down payflow-api...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("payflow-api stopped")
}
