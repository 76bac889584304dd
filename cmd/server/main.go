// Package main starts the character interaction server.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/unboundedlabs/unbounded/internal/api"
	"github.com/unboundedlabs/unbounded/internal/backstory"
	"github.com/unboundedlabs/unbounded/internal/config"
	"github.com/unboundedlabs/unbounded/internal/interaction"
	"github.com/unboundedlabs/unbounded/internal/llm"
	"github.com/unboundedlabs/unbounded/internal/memory"
	"github.com/unboundedlabs/unbounded/internal/prompt"
	"github.com/unboundedlabs/unbounded/internal/repository"
)

func main() {
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	embedder, err := memory.NewEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
	if err != nil {
		log.Fatalf("failed to create embedder: %v", err)
	}
	memoryService := memory.NewService(embedder, store.Memories, cfg.TopK, cfg.SimilarityThreshold)

	client, err := llm.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create generation client: %v", err)
	}
	slog.Info("generation backend ready", "provider", client.Name(), "model", cfg.LLMModel)

	orchestrator := interaction.New(interaction.Deps{
		Characters:      store.Characters,
		States:          store.States,
		Persister:       &interaction.StorePersister{Store: store},
		Log:             store.Interactions,
		Memories:        memoryService,
		Builder:         prompt.NewBuilder(cfg.MaxContextChars),
		Client:          client,
		GenerateTimeout: cfg.GenerateTimeout,
		RetryDelay:      cfg.GenerateRetryDelay,
		HistoryLimit:    cfg.HistoryLimit,
	})

	backstories := backstory.NewGenerator(client, store.Characters, memoryService, 0)

	server := api.NewServer(store.Characters, store.States, orchestrator, backstories)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Router(),
	}

	go func() {
		slog.Info("listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
