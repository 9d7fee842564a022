package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/James9b/fake-api-ecommerce/config"
	"github.com/James9b/fake-api-ecommerce/internal/cache"
	"github.com/James9b/fake-api-ecommerce/internal/clients"
	"github.com/James9b/fake-api-ecommerce/internal/delivery"
	grpcHandler "github.com/James9b/fake-api-ecommerce/internal/delivery/grpc"
	"github.com/James9b/fake-api-ecommerce/internal/messaging"
	"github.com/James9b/fake-api-ecommerce/internal/messaging/kafka"
	"github.com/James9b/fake-api-ecommerce/internal/repository"
	"github.com/James9b/fake-api-ecommerce/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig(logger)

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Invalid log level '%s' in config, using default 'info'. Error: %v", cfg.LogLevel, err)
	} else {
		logger.SetLevel(logLevel)
	}
	if logLevel != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("Starting catalog viewer...")

	ctx := context.Background()

	sessions, err := repository.NewSessionBackend(ctx, repository.SessionBackendConfig{
		Kind:        cfg.SessionBackend,
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
		TTL:         cfg.SessionTTL,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialise session backend: %v", err)
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Errorf("Error closing session backend: %v", err)
		} else {
			logger.Info("Session backend closed.")
		}
	}()

	var publisher messaging.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Infof("Publishing mutation events to Kafka topic %s", cfg.KafkaTopic)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Errorf("Error closing event publisher: %v", err)
		}
	}()

	catalogClient := clients.NewCatalogHTTPClient(cfg.CatalogAPIURL, logger)
	queryCache := cache.NewClient(logger)
	productUseCase := usecase.NewProductUseCase(catalogClient, queryCache, publisher, logger)
	logger.Info("Use cases initialized.")

	router := delivery.NewRouter(productUseCase, sessions, delivery.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookie:   cfg.TabCookieSecure,
		DetailTTL:      cfg.SessionTTL,
	}, logger)
	httpServer := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
		logger.Info("HTTP server stopped serving.")
	}()

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	healthpb.RegisterHealthServer(grpcServer, grpcHandler.NewHealthHandler(productUseCase, logger))
	reflection.Register(grpcServer)
	logger.Info("gRPC health and reflection services registered")

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown failed: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Catalog viewer shut down gracefully.")
}
