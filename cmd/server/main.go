package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/chat-brain/backend/internal/api"
	"github.com/chat-brain/backend/internal/brain"
	"github.com/chat-brain/backend/internal/config"
	"github.com/chat-brain/backend/internal/ingest"
	"github.com/chat-brain/backend/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "brain-api")

	entry.Info("Starting QA brain API service")

	// 1. Config (.env is optional)
	_ = godotenv.Load()
	cfg := config.Load()

	// 2. Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// 3. Engine
	engine := brain.New(brain.Config{
		QueryThreshold: cfg.Matching.QueryThreshold,
		LearnWindow:    cfg.AutoLearn.Window,
		MinRepeat:      cfg.AutoLearn.MinRepeat,
		MaxLearnBatch:  cfg.AutoLearn.MaxBatch,
		MaxBulkEntries: cfg.AutoLearn.MaxBulkEntries,
	}, store, store, entry)

	// 4. Exchange ingestion (optional)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Ingest.Enabled() {
		consumer := ingest.NewConsumer(cfg.Ingest.Brokers, cfg.Ingest.Topic, cfg.Ingest.GroupID, store, entry)
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil {
				entry.WithError(err).Error("Exchange ingestion stopped")
			}
		}()
		entry.Infof("Consuming exchanges from %s", cfg.Ingest.Topic)
	}

	// 5. API server
	server := api.NewServer(engine, entry)
	entry.Infof("QA brain API ready on %s", cfg.Server.Addr)
	if err := server.Start(cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout); err != nil {
		entry.Fatal(err)
	}
}
