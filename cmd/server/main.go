package main

import (
	"context"
	"fmt"
	"time"

	"github.com/medalt/backend/config"
	httpDelivery "github.com/medalt/backend/internal/delivery/http"
	"github.com/medalt/backend/internal/domain"
	"github.com/medalt/backend/internal/infrastructure/cache"
	"github.com/medalt/backend/internal/infrastructure/dataset"
	"github.com/medalt/backend/internal/infrastructure/upload"
	"github.com/medalt/backend/internal/logging"
	"github.com/medalt/backend/internal/resolver"
	"github.com/medalt/backend/internal/usecase"
)

const datasetLoadTimeout = 2 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("main")

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("dataset", cfg.Dataset.Path).
		Msg("starting MedAlt backend v1.0.0")

	engine := loadEngine(cfg)

	similarity, err := resolver.ByName(cfg.Matching.Algorithm)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid matching algorithm")
	}
	nameResolver := resolver.New(resolver.Config{
		Similarity: similarity,
		Cutoff:     cfg.Matching.Cutoff,
		FoldCase:   cfg.Matching.FoldCase,
	})

	var cacheRepo domain.CacheRepository
	if cfg.Cache.Enabled {
		memoryCache := cache.NewMemoryCache()
		defer memoryCache.Close()
		cacheRepo = memoryCache
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("memory cache enabled")
	}

	service := usecase.NewAlternativesService(
		engine,
		nameResolver,
		cacheRepo,
		usecase.AlternativesServiceConfig{
			CacheTTL:           cfg.Cache.TTL,
			DefaultTopN:        cfg.Matching.DefaultTopN,
			MaxTopN:            cfg.Matching.MaxTopN,
			EnableDebugLogging: cfg.Matching.EnableDebugLogging,
		},
	)

	log.Info().
		Float64("cutoff", nameResolver.Cutoff()).
		Str("algorithm", cfg.Matching.Algorithm).
		Bool("foldCase", cfg.Matching.FoldCase).
		Msg("name resolver configured")

	var attachments domain.AttachmentStore
	store, err := upload.NewLocalStore(cfg.Upload.Dir, cfg.Upload.AllowedExtensions, cfg.Upload.MaxBytes())
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.Upload.Dir).Msg("uploads disabled")
	} else {
		attachments = store
	}

	handler := httpDelivery.NewHandler(service, attachments)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

// loadEngine builds the matching engine, falling back to an empty one when the
// dataset cannot be read so the service still answers "Dataset is empty."
func loadEngine(cfg *config.Config) *usecase.Engine {
	log := logging.Component("main")

	ctx, cancel := context.WithTimeout(context.Background(), datasetLoadTimeout)
	defer cancel()

	loader := dataset.NewLoader(dataset.Options{SQLiteTable: cfg.Dataset.Table})
	table, err := loader.Load(ctx, cfg.Dataset.Path)
	if err != nil {
		log.Error().Err(err).Str("source", cfg.Dataset.Path).Msg("error loading dataset")
		return usecase.EmptyEngine()
	}
	log.Info().Str("source", cfg.Dataset.Path).Int("rows", len(table.Rows)).Msg("dataset loaded successfully")

	engine, err := usecase.BuildEngine(table)
	if err != nil {
		log.Error().Err(err).Msg("dataset rejected")
	}
	return engine
}
