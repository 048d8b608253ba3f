package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/api"
	"github.com/novafest/registration-backend/internal/config"
	"github.com/novafest/registration-backend/internal/gateway"
	"github.com/novafest/registration-backend/internal/handlers"
	"github.com/novafest/registration-backend/internal/repository"
	"github.com/novafest/registration-backend/internal/service"
	"github.com/novafest/registration-backend/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize telemetry
	if err := telemetry.Init("registration-backend"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Registration Backend")

	// Connect to PostgreSQL
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repository
	repo := repository.NewRegistrationRepository(db)
	if err := repo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Connect to Redis (sweep lock)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	// Kafka writer for the verification audit stream, optional
	var kafkaWriter *kafka.Writer
	if cfg.KafkaBrokers != "" {
		kafkaWriter = &kafka.Writer{
			Addr:     kafka.TCP(cfg.KafkaBrokers),
			Topic:    "payment.verification.completed",
			Balancer: &kafka.LeastBytes{},
		}
		defer kafkaWriter.Close()
	}

	// Gateway client. Missing credentials are not fatal: the payment
	// endpoints answer with a service-unavailable response instead.
	var gatewayClient *gateway.Client
	gatewayClient, err = gateway.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if err != nil {
		telemetry.Logger.Warn("Gateway credentials not set; payment endpoints disabled")
		gatewayClient = nil
	}

	// Initialize verifier and handlers
	var events service.EventWriter
	if kafkaWriter != nil {
		events = kafkaWriter
	}
	verifier := service.NewVerifier(gatewayClient, repo, redisClient, events)

	verificationHandler := handlers.NewVerificationHandler(verifier)
	orderHandler := handlers.NewOrderHandler(gatewayClient)
	registrationHandler := handlers.NewRegistrationHandler(repo, gatewayClient, cfg.RazorpayKeySecret)

	// Setup router and HTTP server
	r := api.NewRouter(verificationHandler, orderHandler, registrationHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Registration Backend starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
