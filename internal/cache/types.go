// Package cache implements the two-tier cache gateway for generated SQL.
// It presents a single lookup/store contract over two interchangeable
// backends: an exact-match key/value store and a semantic similarity store.
package cache

import (
	"context"
	"time"
)

// Entry is a single cached result returned by a gateway lookup.
type Entry struct {
	// Response is the cached generated SQL.
	Response string `json:"response"`

	// Prompt is the original query the entry was stored under.
	// For semantic hits this may differ from the query being looked up.
	Prompt string `json:"prompt,omitempty"`

	// Distance is the embedding distance between the lookup query and the
	// cached prompt. Always zero for exact-match hits.
	Distance float64 `json:"distance,omitempty"`

	// GeneratedAt is the unix timestamp when the response was generated.
	GeneratedAt int64 `json:"generated_at,omitempty"`
}

// Stats holds backend statistics for monitoring.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Sets    int64   `json:"sets"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// ExactStore is a key/value backend used by the exact-match strategy.
type ExactStore interface {
	// Get retrieves a value from the store.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL, overwriting any prior value.
	// If TTL is 0, the default TTL is used.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Ping checks if the store is healthy.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error

	// Stats returns store statistics.
	Stats() Stats
}

// SemanticBackend is the similarity-search backend used by the semantic strategy.
type SemanticBackend interface {
	// Lookup returns entries whose embedding distance to the query is within
	// the threshold, ordered by increasing distance (closest first).
	Lookup(ctx context.Context, query string, threshold float64) ([]Entry, error)

	// Store upserts a response keyed by the query's embedding.
	// Metadata must carry a generation timestamp under "generated_at".
	Store(ctx context.Context, query, response string, metadata map[string]any) error

	// Ping checks if the backend is healthy.
	Ping(ctx context.Context) error

	// Close releases resources held by the backend.
	Close() error
}

// exactPayload is the serialized value stored by the exact-match path.
type exactPayload struct {
	Response    string `json:"response"`
	GeneratedAt int64  `json:"generated_at,omitempty"`
}
