package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetMiss(t *testing.T) {
	store := NewMemoryStore(DefaultMemoryConfig())
	defer store.Close()

	val, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore(DefaultMemoryConfig())
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("SELECT 1"), 0))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("SELECT 1"), val)
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore(DefaultMemoryConfig())
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("first"), 0))
	require.NoError(t, store.Set(ctx, "k", []byte("second"), 0))

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), val)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(MemoryConfig{
		DefaultTTL:      10 * time.Millisecond,
		CleanupInterval: time.Minute,
	})
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	val, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, val)
}

func TestMemoryStoreStats(t *testing.T) {
	store := NewMemoryStore(DefaultMemoryConfig())
	defer store.Close()
	ctx := context.Background()

	_, _ = store.Get(ctx, "absent")
	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	_, _ = store.Get(ctx, "k")

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}
