package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	cacheRedis "github.com/PedroSoutoSFSU/CraiglistApplication/internal/adapter/cache/redis"
	natsAdapter "github.com/PedroSoutoSFSU/CraiglistApplication/internal/adapter/messaging/nats"
	redisAdapter "github.com/PedroSoutoSFSU/CraiglistApplication/internal/adapter/messaging/redis"
	mongoAdapter "github.com/PedroSoutoSFSU/CraiglistApplication/internal/adapter/mongo"
	minioAdapter "github.com/PedroSoutoSFSU/CraiglistApplication/internal/adapter/storage/minio"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/config"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/platform/metrics"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/platform/tracer"
	httpPort "github.com/PedroSoutoSFSU/CraiglistApplication/internal/port/http"
	"github.com/PedroSoutoSFSU/CraiglistApplication/internal/usecase"
	"go.uber.org/zap"
)

const serviceName = "listing_service"

func main() {
	configPath := "config.yaml"
	if cp := os.Getenv("CONFIG_PATH"); cp != "" {
		configPath = cp
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapConfig := zap.NewProductionConfig()
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	tp := tracer.InitTracer(serviceName, cfg.Tracing.OTLPEndpoint, logger)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shut down tracer provider", zap.Error(err))
		}
	}()

	mongoClient, err := mongoAdapter.NewMongoDBConnection(&cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	logger.Info("Successfully connected to MongoDB")

	listingRepo := mongoAdapter.NewListingMongoRepository(mongoClient, cfg.Mongo.Database)
	if err := listingRepo.EnsureIndexes(context.Background()); err != nil {
		logger.Fatal("Failed to ensure listing indexes", zap.Error(err))
	}
	accountRepo := mongoAdapter.NewAccountMongoRepository(mongoClient, cfg.Mongo.Database)

	imageStore, err := minioAdapter.NewImageStore(&cfg.MinIO, logger)
	if err != nil {
		logger.Fatal("Failed to initialize image store", zap.Error(err))
	}

	queuePublisher, err := natsAdapter.NewPublisher(&cfg.NATS, logger)
	if err != nil {
		logger.Fatal("Failed to initialize NATS publisher", zap.Error(err))
	}
	defer queuePublisher.Close()

	redisClient, err := cacheRedis.NewRedisClient(&cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()

	broadcaster := redisAdapter.NewBroadcaster(redisClient, cfg.Redis.BroadcastChannel, logger)
	cacheRepo := cacheRedis.NewRedisCacheRepository(redisClient, logger)

	listingUC := usecase.NewListingUseCase(listingRepo, accountRepo, imageStore, queuePublisher, broadcaster, cacheRepo, logger)
	imageUC := usecase.NewImageUseCase(imageStore, logger)

	metricsManager := metrics.NewManager(serviceName)
	go func() {
		if err := metrics.StartServer(cfg.Metrics.Port, logger, metricsManager.Registry); err != nil {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reconcile.Enabled {
		reconciler := usecase.NewReconciler(
			listingRepo,
			queuePublisher,
			cfg.Reconcile.Interval,
			cfg.Reconcile.StaleSkew,
			cfg.Reconcile.BatchSize,
			logger,
		)
		go reconciler.Run(rootCtx)
	}

	handler := httpPort.NewHandler(listingUC, imageUC, metricsManager, cfg.HTTP.MaxUploadBytes, logger)
	router := httpPort.NewRouter(handler, metricsManager, cfg.JWT.Secret, logger)
	server := httpPort.NewServer(&cfg.HTTP, router, logger)

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
