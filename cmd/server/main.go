package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/wanderhub/internal/bootstrap"
	"anoa.com/wanderhub/internal/config"
	"anoa.com/wanderhub/internal/server"
	"anoa.com/wanderhub/pkg/broker"
	"anoa.com/wanderhub/pkg/cache"
	"anoa.com/wanderhub/pkg/database"
	"anoa.com/wanderhub/pkg/llm"
	"anoa.com/wanderhub/pkg/logger"
	"anoa.com/wanderhub/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	db, err := database.Connect(cfg.Database.DSN(), cfg.IsDevelopment())
	if err != nil {
		logg.Fatalw("database unavailable", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		logg.Fatalw("migration failed", "error", err)
	}
	if err := bootstrap.SeedAdmin(db, cfg.AdminUsername); err != nil {
		logg.Fatalw("failed to seed admin", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logg.Warnw("redis disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var mediaStorage storage.MediaStorage
	if cfg.CloudinaryURL != "" {
		mediaStorage, err = storage.NewCloudinaryStorage(cfg.CloudinaryURL, cfg.CloudinaryUploadFolder)
		if err != nil {
			logg.Fatalw("failed to init cloudinary", "error", err)
		}
	} else {
		logg.Warn("CLOUDINARY_URL not set, media uploads are disabled")
	}

	publisher := broker.Nop()
	if len(cfg.KafkaBrokers) > 0 {
		publisher = broker.NewKafkaPublisher(broker.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
	}
	defer publisher.Close()

	var model llm.Provider
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logg.Warnw("event summaries disabled", "error", err)
		} else {
			model = gemini
			defer gemini.Close()
		}
	}

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))

	srv, err := server.NewServer(server.Deps{
		Config:    cfg,
		DB:        db,
		Redis:     redisClient,
		Meili:     meiliClient,
		Storage:   mediaStorage,
		LLM:       model,
		Publisher: publisher,
		Log:       logg,
	})
	if err != nil {
		logg.Fatalw("failed to build server", "error", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Fatalw("server exited with error", "error", err)
		}
	case <-ctx.Done():
		logg.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Errorw("graceful shutdown failed", "error", err)
	}
}
