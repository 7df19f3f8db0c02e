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

	"bookstore-service/config"
	"bookstore-service/internal/api"
	"bookstore-service/internal/broker"
	"bookstore-service/internal/kvstore"
	"bookstore-service/internal/redisclient"
	"bookstore-service/internal/service"
	"bookstore-service/internal/session"
	"bookstore-service/internal/store"
	"bookstore-service/internal/util"
	"bookstore-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(util.LoggerConfig{Env: cfg.Server.Env, Level: cfg.Observ.LogLevel}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting bookstore service")

	tp, err := util.InitTracer(util.TracingConfig{
		ServiceName:    "bookstore-service",
		JaegerEndpoint: cfg.Observ.JaegerEndpoint,
		SampleRatio:    cfg.Observ.TraceSampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to apply schema", zap.Error(err))
	}
	logger.Info("Database connected")

	checks := map[string]api.Pinger{"postgres": db}

	var backend kvstore.Backend
	switch cfg.Storage.Backend {
	case config.StorageMemory:
		backend = kvstore.NewMemoryBackend()
	case config.StoragePostgres:
		backend = db.KV()
	default:
		ttl := time.Duration(cfg.Storage.SessionTTLHours) * time.Hour
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		backend = redisClient
		checks["redis"] = redisClient
	}
	logger.Info("Session storage ready", zap.String("backend", cfg.Storage.Backend))

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicCheckout)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicCheckout))

	eventPublisher := broker.NewEventPublisher(producer)

	registry := session.NewRegistry(kvstore.NewStore(backend))
	shopService := service.NewShopService(registry, eventPublisher, cfg.Business.ShippingFee)
	dashboardService := service.NewDashboardService(db)
	customerService := service.NewCustomerService(db)
	recorder := service.NewTransactionRecorder(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	idle := session.IdleTimeout(time.Duration(cfg.Storage.SessionTTLHours) * time.Hour)
	go registry.RunEviction(workerCtx, idle, idle/4)

	checkoutConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicCheckout, cfg.Kafka.ConsumerGroup)
	transactionWorker := worker.NewTransactionWorker(checkoutConsumer, recorder)
	go func() {
		if err := transactionWorker.Start(workerCtx); err != nil && err != context.Canceled {
			logger.Error("Transaction worker error", zap.Error(err))
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(shopService, dashboardService, customerService, checks)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if err := transactionWorker.Stop(); err != nil {
		logger.Warn("Error stopping worker", zap.Error(err))
	}

	logger.Info("Server exited")
}
