// Package config provides configuration management with hot-reload support.
// It uses fsnotify to watch for file changes and atomic pointer swaps for
// zero-downtime updates.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/queryforge/queryforge/internal/cache"
	cacheredis "github.com/queryforge/queryforge/internal/cache/redis"
	"github.com/queryforge/queryforge/internal/cache/semantic/embedding"
	"github.com/queryforge/queryforge/internal/cache/semantic/vector"
	"github.com/queryforge/queryforge/internal/guard"
	"github.com/queryforge/queryforge/internal/llm"
	"github.com/queryforge/queryforge/internal/observability"
)

// Config represents the complete service configuration.
type Config struct {
	Server     ServerConfig                `yaml:"server"`
	Cache      CacheConfig                 `yaml:"cache"`
	Generation llm.OpenAIConfig            `yaml:"generation"`
	SQLCheck   guard.SyntaxCheckerConfig   `yaml:"sql_check"`
	Auth       AuthConfig                  `yaml:"auth"`
	RateLimit  RateLimitConfig             `yaml:"rate_limit"`
	Logging    observability.LoggerConfig  `yaml:"logging"`
	Metrics    MetricsConfig               `yaml:"metrics"`
	Tracing    observability.TracingConfig `yaml:"tracing"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// CacheConfig selects and configures the cache backends.
type CacheConfig struct {
	Gateway cache.GatewayConfig `yaml:"gateway"`

	// ExactBackend selects the exact-match store: "redis" or "memory".
	ExactBackend string             `yaml:"exact_backend"`
	Redis        cacheredis.Config  `yaml:"redis"`
	Memory       cache.MemoryConfig `yaml:"memory"`

	Semantic SemanticConfig `yaml:"semantic"`
}

// SemanticConfig configures the semantic cache backend.
type SemanticConfig struct {
	Enabled bool `yaml:"enabled"`
	TopK    int  `yaml:"top_k"`

	Embedding embedding.OpenAIConfig `yaml:"embedding"`

	// VectorBackend selects the vector store: "qdrant" or "memory".
	VectorBackend string              `yaml:"vector_backend"`
	Qdrant        vector.QdrantConfig `yaml:"qdrant"`
}

// AuthConfig defines optional bearer authentication.
type AuthConfig struct {
	Enabled bool `yaml:"enabled"`

	// APIKeys are static bearer tokens accepted as-is.
	APIKeys []string `yaml:"api_keys"`

	// JWTSecret enables HS256 JWT verification when set.
	JWTSecret string `yaml:"jwt_secret"`
}

// RateLimitConfig defines rate limiting parameters.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Cache: CacheConfig{
			Gateway:      cache.DefaultGatewayConfig(),
			ExactBackend: "memory",
			Redis:        cacheredis.DefaultConfig(),
			Memory:       cache.DefaultMemoryConfig(),
			Semantic: SemanticConfig{
				Enabled:       false,
				TopK:          4,
				Embedding:     embedding.DefaultOpenAIConfig(),
				VectorBackend: "memory",
			},
		},
		Generation: llm.DefaultOpenAIConfig(),
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		Logging: observability.LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// LoadFromFile reads and parses a YAML configuration file.
// Environment variables in the format ${VAR_NAME} are expanded.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}

	switch c.Cache.ExactBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache.exact_backend must be \"redis\" or \"memory\", got %q", c.Cache.ExactBackend)
	}

	if c.Cache.Semantic.Enabled {
		switch c.Cache.Semantic.VectorBackend {
		case "qdrant":
			if c.Cache.Semantic.Qdrant.APIBase == "" {
				return fmt.Errorf("cache.semantic.qdrant.api_base is required for the qdrant backend")
			}
			if c.Cache.Semantic.Qdrant.Collection == "" {
				return fmt.Errorf("cache.semantic.qdrant.collection is required for the qdrant backend")
			}
		case "memory":
		default:
			return fmt.Errorf("cache.semantic.vector_backend must be \"qdrant\" or \"memory\", got %q", c.Cache.Semantic.VectorBackend)
		}
	}

	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.enabled requires api_keys or jwt_secret")
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate_limit.requests_per_second must be positive")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}

	return nil
}
