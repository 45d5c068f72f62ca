package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	qferrors "github.com/queryforge/queryforge/pkg/errors"
)

// Gateway presents a uniform lookup/store contract over the exact-match and
// semantic backends, so callers never branch on backend identity beyond
// carrying a Strategy value.
//
// Backends are wired once at construction; either may be nil, in which case
// the corresponding strategy fails with a cache backend error.
type Gateway struct {
	exact    ExactStore
	semantic SemanticBackend
	keys     *KeyGenerator
	ttl      time.Duration
}

// GatewayConfig holds configuration for the gateway.
type GatewayConfig struct {
	// Namespace prefixes all exact-match keys.
	Namespace string `yaml:"namespace"`

	// DefaultTTL bounds the lifetime of exact-match entries.
	// Eviction beyond TTL is the backend's responsibility.
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// DefaultGatewayConfig returns sensible defaults.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Namespace:  "queryforge",
		DefaultTTL: 24 * time.Hour,
	}
}

// NewGateway creates a gateway over the given backends.
func NewGateway(exact ExactStore, semantic SemanticBackend, cfg GatewayConfig) *Gateway {
	if cfg.Namespace == "" {
		cfg.Namespace = "queryforge"
	}
	return &Gateway{
		exact:    exact,
		semantic: semantic,
		keys:     NewKeyGenerator(cfg.Namespace),
		ttl:      cfg.DefaultTTL,
	}
}

// Lookup is a read-only probe of the backend selected by the strategy.
// A miss returns an empty slice and no error. Backend failures surface as
// cache backend errors; the gateway does not retry.
func (g *Gateway) Lookup(ctx context.Context, query string, strat Strategy) ([]Entry, error) {
	switch s := strat.(type) {
	case ExactMatch:
		return g.lookupExact(ctx, query)
	case Semantic:
		return g.lookupSemantic(ctx, query, s.Threshold)
	default:
		return nil, fmt.Errorf("unsupported strategy %T", strat)
	}
}

func (g *Gateway) lookupExact(ctx context.Context, query string) ([]Entry, error) {
	if g.exact == nil {
		return nil, qferrors.NewCacheBackendError("lookup", fmt.Errorf("exact-match backend not configured"))
	}

	raw, err := g.exact.Get(ctx, g.keys.FromQuery(query))
	if err != nil {
		return nil, qferrors.NewCacheBackendError("lookup", err)
	}
	if raw == nil {
		return nil, nil
	}

	var payload exactPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, qferrors.NewCacheBackendError("lookup", fmt.Errorf("decode payload: %w", err))
	}

	// One key, at most one entry; wrapped in a slice for interface uniformity.
	return []Entry{{
		Response:    payload.Response,
		Prompt:      query,
		GeneratedAt: payload.GeneratedAt,
	}}, nil
}

func (g *Gateway) lookupSemantic(ctx context.Context, query string, threshold float64) ([]Entry, error) {
	if g.semantic == nil {
		return nil, qferrors.NewCacheBackendError("lookup", fmt.Errorf("semantic backend not configured"))
	}

	entries, err := g.semantic.Lookup(ctx, query, threshold)
	if err != nil {
		return nil, qferrors.NewCacheBackendError("lookup", err)
	}
	return entries, nil
}

// Store writes a validated response into the backend selected by the strategy.
// The exact path overwrites any prior value for the query; the semantic path
// upserts an embedding plus metadata carrying the generation timestamp.
func (g *Gateway) Store(ctx context.Context, query, response string, strat Strategy, metadata map[string]any) error {
	switch strat.(type) {
	case ExactMatch:
		return g.storeExact(ctx, query, response)
	case Semantic:
		return g.storeSemantic(ctx, query, response, metadata)
	default:
		return fmt.Errorf("unsupported strategy %T", strat)
	}
}

func (g *Gateway) storeExact(ctx context.Context, query, response string) error {
	if g.exact == nil {
		return qferrors.NewCacheBackendError("store", fmt.Errorf("exact-match backend not configured"))
	}

	payload, err := json.Marshal(exactPayload{
		Response:    response,
		GeneratedAt: time.Now().Unix(),
	})
	if err != nil {
		return qferrors.NewCacheBackendError("store", fmt.Errorf("encode payload: %w", err))
	}

	if err := g.exact.Set(ctx, g.keys.FromQuery(query), payload, g.ttl); err != nil {
		return qferrors.NewCacheBackendError("store", err)
	}
	return nil
}

func (g *Gateway) storeSemantic(ctx context.Context, query, response string, metadata map[string]any) error {
	if g.semantic == nil {
		return qferrors.NewCacheBackendError("store", fmt.Errorf("semantic backend not configured"))
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	if _, ok := metadata["generated_at"]; !ok {
		metadata["generated_at"] = time.Now().Unix()
	}

	if err := g.semantic.Store(ctx, query, response, metadata); err != nil {
		return qferrors.NewCacheBackendError("store", err)
	}
	return nil
}

// Ping checks the health of all configured backends.
func (g *Gateway) Ping(ctx context.Context) error {
	if g.exact != nil {
		if err := g.exact.Ping(ctx); err != nil {
			return fmt.Errorf("exact backend: %w", err)
		}
	}
	if g.semantic != nil {
		if err := g.semantic.Ping(ctx); err != nil {
			return fmt.Errorf("semantic backend: %w", err)
		}
	}
	return nil
}

// Close releases all backend resources.
func (g *Gateway) Close() error {
	var firstErr error
	if g.exact != nil {
		if err := g.exact.Close(); err != nil {
			firstErr = err
		}
	}
	if g.semantic != nil {
		if err := g.semantic.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ExactStats returns statistics for the exact-match backend, if configured.
func (g *Gateway) ExactStats() Stats {
	if g.exact == nil {
		return Stats{}
	}
	return g.exact.Stats()
}
