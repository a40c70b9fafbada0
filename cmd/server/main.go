package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hero-tracker/internal/config"
	"github.com/hero-tracker/internal/handler"
	"github.com/hero-tracker/internal/kafka"
	"github.com/hero-tracker/internal/postgres"
	"github.com/hero-tracker/internal/redis"
	"github.com/hero-tracker/internal/service"
	"github.com/hero-tracker/internal/websocket"
	"github.com/hero-tracker/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Redis document store
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	docStore, err := redis.NewDocStore(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer docStore.Close()
	logger.Info("connected to Redis")

	// Initialize PostgreSQL journal (optional)
	var postgresRepo *postgres.Repository
	var journalWorker *worker.JournalWorker
	if cfg.Postgres.Enabled {
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		postgresRepo, err = postgres.NewRepository(&cfg.Postgres, logger)
		if err != nil {
			logger.Error("failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer postgresRepo.Close()
		logger.Info("connected to PostgreSQL")

		// Run database migrations
		if err := postgresRepo.RunMigrations(ctx); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		journalWorker = worker.NewJournalWorker(docStore, postgresRepo, &cfg.Journal, logger)

		// Rebuild missing workout documents from the journal (recovery)
		logger.Info("restoring workout history from journal")
		if err := journalWorker.RestoreAll(ctx); err != nil {
			logger.Warn("failed to restore from journal on startup", "error", err)
		}

		if cfg.Journal.Enabled {
			if err := journalWorker.Start(ctx); err != nil {
				logger.Error("failed to start journal worker", "error", err)
				os.Exit(1)
			}
		}
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize core managers
	clock := service.SystemClock{}
	ids := service.UUIDSource{}
	random := service.SystemRandom{}

	var journal service.Journal
	if postgresRepo != nil {
		journal = postgresRepo
	}

	accounts := service.NewAccounts(docStore, journal, &cfg.Game, cfg.Leaderboard.Seed, ids, random, clock, logger)
	workouts := service.NewWorkouts(docStore, ids, clock, logger)
	social := service.NewSocial(docStore, accounts, cfg.Leaderboard.Seed, ids, random, clock, logger)
	tracker := service.NewTracker(accounts, workouts, &cfg.Game, clock, logger)

	// Initialize Kafka consumer for tracker event ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, tracker, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(accounts, workouts, social, tracker, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop journal worker
	if journalWorker != nil {
		if err := journalWorker.Stop(); err != nil {
			logger.Error("failed to stop journal worker", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
