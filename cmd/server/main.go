package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quotesync/backend/config"
	httpDelivery "github.com/quotesync/backend/internal/delivery/http"
	"github.com/quotesync/backend/internal/infrastructure/cache"
	"github.com/quotesync/backend/internal/infrastructure/metrics"
	"github.com/quotesync/backend/internal/infrastructure/store"
	"github.com/quotesync/backend/internal/usecase"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting QuoteSync Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Store: %s (page size %d, %d attempts)", cfg.Store.BaseURL, cfg.Store.PageSize, cfg.Store.MaxAttempts)

	// Initialize infrastructure dependencies
	client := store.NewClient(cfg.Store.BaseURL, cfg.Store.APIKey, cfg.Store.AppID, store.Options{
		PageSize:          cfg.Store.PageSize,
		MaxAttempts:       cfg.Store.MaxAttempts,
		BaseDelay:         cfg.Store.RetryBaseDelay,
		CallTimeout:       cfg.Store.CallTimeout,
		RequestsPerSecond: cfg.Store.RequestsPerSecond,
	})
	gateway := store.NewGateway(client)
	memoryCache := cache.NewMemoryCache()
	m := metrics.New()

	// Initialize usecase layer
	batchOpts := usecase.BatchOptions{
		BatchSize:  cfg.Sync.BatchSize,
		Window:     cfg.Sync.Concurrency,
		ChunkDelay: cfg.Sync.ChunkDelay,
	}
	aggregateService := usecase.NewAggregateService(gateway, batchOpts)
	syncService := usecase.NewSyncService(gateway, aggregateService, usecase.SyncConfig{
		BatchSize:  cfg.Sync.BatchSize,
		Window:     cfg.Sync.Concurrency,
		ChunkDelay: cfg.Sync.ChunkDelay,
	})
	catalogService := usecase.NewCatalogService(gateway, memoryCache, cfg.Cache.TTL)

	log.Printf("Sync: batch size %d, concurrency %d, default markup %.2f",
		cfg.Sync.BatchSize, cfg.Sync.Concurrency, cfg.Sync.DefaultMarkup)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(syncService, aggregateService, catalogService, m, cfg.Sync.DefaultMarkup)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, m)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
