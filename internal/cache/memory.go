package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore implements ExactStore using an in-process TTL cache.
// It is intended for development and tests; production deployments use Redis.
type MemoryStore struct {
	c          *gocache.Cache
	defaultTTL time.Duration

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// MemoryConfig holds configuration for MemoryStore.
type MemoryConfig struct {
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// DefaultMemoryConfig returns sensible defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		DefaultTTL:      time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// NewMemoryStore creates a new in-memory exact-match store.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}

	return &MemoryStore{
		c:          gocache.New(cfg.DefaultTTL, cfg.CleanupInterval),
		defaultTTL: cfg.DefaultTTL,
	}
}

// Get retrieves a value. Returns nil, nil on a miss.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		m.misses.Add(1)
		return nil, nil
	}

	b, ok := v.([]byte)
	if !ok {
		m.misses.Add(1)
		return nil, fmt.Errorf("memory get: unexpected value type %T", v)
	}

	m.hits.Add(1)
	return b, nil
}

// Set stores a value, overwriting any prior value for the key.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.c.Set(key, value, ttl)
	m.sets.Add(1)
	return nil
}

// Ping always succeeds for the in-memory store.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close releases resources. The underlying janitor stops on GC.
func (m *MemoryStore) Close() error {
	m.c.Flush()
	return nil
}

// Stats returns store statistics.
func (m *MemoryStore) Stats() Stats {
	hits := m.hits.Load()
	misses := m.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Hits:    hits,
		Misses:  misses,
		Sets:    m.sets.Load(),
		HitRate: hitRate,
	}
}
