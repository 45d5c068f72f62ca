package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLoadsInitialConfig(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9191\n")

	m, err := NewManager(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 9191, m.Get().Server.Port)
}

func TestManagerRejectsInvalidInitialConfig(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: -1\n")

	_, err := NewManager(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestManagerHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o644))

	m, err := NewManager(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer m.Close()

	reloaded := make(chan *Config, 1)
	m.OnChange(func(cfg *Config) { reloaded <- cfg })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9292\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 9292, cfg.Server.Port)
		assert.Equal(t, 9292, m.Get().Server.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestManagerKeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o644))

	m, err := NewManager(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, m.Watch(ctx))

	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -5\n"), 0o644))

	// Give the debounce and reload a chance to run; the bad config must not
	// replace the current one.
	time.Sleep(reloadDebounce + 500*time.Millisecond)
	assert.Equal(t, 9191, m.Get().Server.Port)
}
