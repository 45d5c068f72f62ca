// Package semantic implements similarity-based caching of generated SQL.
// Responses are indexed by embedding vectors of the query text, so a lookup
// can hit on queries that are phrased differently but mean the same thing.
package semantic

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/queryforge/queryforge/internal/cache"
	"github.com/queryforge/queryforge/internal/cache/semantic/embedding"
	"github.com/queryforge/queryforge/internal/cache/semantic/vector"
)

// Cache implements cache.SemanticBackend over an embedder and a vector store.
type Cache struct {
	embedder    embedding.Embedder
	vectorStore vector.Store
	topK        int

	hits       atomic.Int64
	misses     atomic.Int64
	sets       atomic.Int64
	errs       atomic.Int64
	embedCalls atomic.Int64
}

// Config holds configuration for the semantic cache.
type Config struct {
	// TopK bounds how many candidates a lookup returns.
	TopK int `yaml:"top_k"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{TopK: 4}
}

// New creates a new semantic cache.
func New(embedder embedding.Embedder, store vector.Store, cfg Config) (*Cache, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}

	return &Cache{
		embedder:    embedder,
		vectorStore: store,
		topK:        cfg.TopK,
	}, nil
}

// Lookup embeds the query and returns cached entries within the distance
// threshold, closest first. The threshold boundary is inclusive. A miss
// returns an empty slice and no error.
func (c *Cache) Lookup(ctx context.Context, query string, threshold float64) ([]cache.Entry, error) {
	if query == "" {
		c.misses.Add(1)
		return nil, nil
	}

	emb, err := c.embedder.Embed(ctx, query)
	if err != nil {
		c.errs.Add(1)
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	c.embedCalls.Add(1)

	results, err := c.vectorStore.Search(ctx, emb, vector.SearchOptions{
		TopK:        c.topK,
		MaxDistance: threshold,
	})
	if err != nil {
		c.errs.Add(1)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if len(results) == 0 {
		c.misses.Add(1)
		return nil, nil
	}

	entries := make([]cache.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, cache.Entry{
			Response:    r.Payload.Response,
			Prompt:      r.Payload.Prompt,
			Distance:    r.Distance,
			GeneratedAt: r.Payload.GeneratedAt,
		})
	}

	c.hits.Add(1)
	return entries, nil
}

// Store embeds the query and upserts the response with its metadata.
// A generation timestamp is taken from metadata["generated_at"] when present.
func (c *Cache) Store(ctx context.Context, query, response string, metadata map[string]any) error {
	if query == "" || response == "" {
		return nil
	}

	emb, err := c.embedder.Embed(ctx, query)
	if err != nil {
		c.errs.Add(1)
		return fmt.Errorf("generate embedding: %w", err)
	}
	c.embedCalls.Add(1)

	generatedAt := time.Now().Unix()
	if v, ok := metadata["generated_at"]; ok {
		switch ts := v.(type) {
		case int64:
			generatedAt = ts
		case int:
			generatedAt = int64(ts)
		case float64:
			generatedAt = int64(ts)
		}
	}

	entry := vector.Entry{
		ID:     uuid.New().String(),
		Vector: emb,
		Payload: vector.Payload{
			Prompt:      query,
			Response:    response,
			GeneratedAt: generatedAt,
			Metadata:    metadata,
		},
	}

	if err := c.vectorStore.Upsert(ctx, entry); err != nil {
		c.errs.Add(1)
		return fmt.Errorf("vector upsert: %w", err)
	}

	c.sets.Add(1)
	return nil
}

// Ping checks if the vector store is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.vectorStore.Ping(ctx)
}

// Close releases resources held by the cache.
func (c *Cache) Close() error {
	return c.vectorStore.Close()
}

// Stats returns semantic cache statistics.
func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:       hits,
		Misses:     misses,
		Sets:       c.sets.Load(),
		Errors:     c.errs.Load(),
		EmbedCalls: c.embedCalls.Load(),
		HitRate:    hitRate,
	}
}

// Stats holds semantic cache statistics.
type Stats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	Sets       int64   `json:"sets"`
	Errors     int64   `json:"errors"`
	EmbedCalls int64   `json:"embed_calls"`
	HitRate    float64 `json:"hit_rate"`
}
