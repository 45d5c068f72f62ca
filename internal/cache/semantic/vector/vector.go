// Package vector provides vector storage backends for the semantic cache.
package vector

import (
	"context"
)

// Store defines the interface for vector storage backends.
type Store interface {
	// Search finds vectors within the distance bound, ordered by increasing
	// distance (closest first). The bound is inclusive: a vector at exactly
	// MaxDistance is returned.
	Search(ctx context.Context, vector []float64, opts SearchOptions) ([]SearchResult, error)

	// Upsert stores a vector with associated payload.
	Upsert(ctx context.Context, entry Entry) error

	// Ping checks if the store is healthy.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// SearchOptions configures vector search behavior.
type SearchOptions struct {
	// TopK is the maximum number of results to return.
	TopK int

	// MaxDistance is the inclusive upper bound on cosine distance.
	// For cosine distance: 0 = identical, 2 = opposite; normalized
	// embeddings stay within [0, 1] in practice.
	MaxDistance float64
}

// SearchResult represents a single search result.
type SearchResult struct {
	// ID is the unique identifier of the vector.
	ID string

	// Distance is the cosine distance to the query vector.
	Distance float64

	// Payload contains the cached data associated with this vector.
	Payload Payload
}

// Entry represents a vector entry to be stored.
type Entry struct {
	// ID is the unique identifier for this entry.
	ID string

	// Vector is the embedding vector.
	Vector []float64

	// Payload contains the data to cache.
	Payload Payload
}

// Payload contains the cached prompt and response.
type Payload struct {
	// Prompt is the original query text used to generate the embedding.
	Prompt string `json:"prompt"`

	// Response is the cached generated SQL.
	Response string `json:"response"`

	// GeneratedAt is the unix timestamp when the response was generated.
	GeneratedAt int64 `json:"generated_at,omitempty"`

	// Metadata carries free-form entry metadata.
	Metadata map[string]any `json:"metadata,omitempty"`
}
