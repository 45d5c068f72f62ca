package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/queryforge/queryforge/internal/cache"
	cacheredis "github.com/queryforge/queryforge/internal/cache/redis"
	"github.com/queryforge/queryforge/internal/cache/semantic"
	"github.com/queryforge/queryforge/internal/cache/semantic/embedding"
	"github.com/queryforge/queryforge/internal/cache/semantic/vector"
	"github.com/queryforge/queryforge/internal/config"
	"github.com/queryforge/queryforge/internal/guard"
	"github.com/queryforge/queryforge/internal/llm"
)

// buildGateway assembles the cache gateway from config. Both backends are
// constructed once here; the orchestrator never re-initializes them.
func buildGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.Gateway, func(), error) {
	var exact cache.ExactStore
	switch cfg.Cache.ExactBackend {
	case "redis":
		store, err := cacheredis.New(cfg.Cache.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("redis store: %w", err)
		}
		exact = store
		logger.Info("exact-match cache backend ready", "backend", "redis", "addr", cfg.Cache.Redis.Addr)
	case "memory":
		exact = cache.NewMemoryStore(cfg.Cache.Memory)
		logger.Info("exact-match cache backend ready", "backend", "memory")
	default:
		return nil, nil, fmt.Errorf("unknown exact backend %q", cfg.Cache.ExactBackend)
	}

	var semanticBackend cache.SemanticBackend
	if cfg.Cache.Semantic.Enabled {
		embedder, err := embedding.NewOpenAIEmbedder(cfg.Cache.Semantic.Embedding)
		if err != nil {
			return nil, nil, fmt.Errorf("embedder: %w", err)
		}

		var store vector.Store
		switch cfg.Cache.Semantic.VectorBackend {
		case "qdrant":
			qdrant, err := vector.NewQdrantStore(cfg.Cache.Semantic.Qdrant)
			if err != nil {
				return nil, nil, fmt.Errorf("qdrant store: %w", err)
			}
			if err := qdrant.EnsureCollection(ctx); err != nil {
				return nil, nil, fmt.Errorf("qdrant collection: %w", err)
			}
			store = qdrant
		case "memory":
			store = vector.NewMemoryStore()
		default:
			return nil, nil, fmt.Errorf("unknown vector backend %q", cfg.Cache.Semantic.VectorBackend)
		}

		sem, err := semantic.New(embedder, store, semantic.Config{TopK: cfg.Cache.Semantic.TopK})
		if err != nil {
			return nil, nil, fmt.Errorf("semantic cache: %w", err)
		}
		semanticBackend = sem
		logger.Info("semantic cache backend ready",
			"vector_backend", cfg.Cache.Semantic.VectorBackend,
			"embedding_model", cfg.Cache.Semantic.Embedding.Model,
		)
	}

	gateway := cache.NewGateway(exact, semanticBackend, cfg.Cache.Gateway)
	cleanup := func() {
		if err := gateway.Close(); err != nil {
			logger.Warn("cache gateway close failed", "error", err)
		}
	}
	return gateway, cleanup, nil
}

// buildGuard assembles the guarded generator: the OpenAI generator wrapped
// with schema binding and, when a DSN is configured, the Postgres syntax check.
func buildGuard(cfg *config.Config, logger *slog.Logger) (*guard.Guard, func(), error) {
	generator, err := llm.NewOpenAIGenerator(cfg.Generation)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: %w", err)
	}

	var validators []guard.Validator
	cleanup := func() {}

	if cfg.SQLCheck.DSN != "" {
		checker, err := guard.NewSyntaxChecker(cfg.SQLCheck)
		if err != nil {
			return nil, nil, fmt.Errorf("syntax checker: %w", err)
		}
		validators = append(validators, checker)
		cleanup = func() {
			if err := checker.Close(); err != nil {
				logger.Warn("syntax checker close failed", "error", err)
			}
		}
		logger.Info("SQL syntax checking enabled")
	}

	g, err := guard.New(generator, validators...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return g, cleanup, nil
}
