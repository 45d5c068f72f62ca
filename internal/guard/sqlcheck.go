package guard

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "postgres" driver for the syntax checker.
	_ "github.com/lib/pq"
)

// SyntaxChecker validates generated SQL by preparing it against a live
// Postgres connection. Preparing parses and plans the statement server-side
// without executing it, so syntactically or semantically invalid SQL is
// rejected before it ever reaches the cache.
type SyntaxChecker struct {
	db *sql.DB
}

// SyntaxCheckerConfig holds configuration for the syntax checker.
type SyntaxCheckerConfig struct {
	// DSN is the Postgres connection string. Empty disables the checker.
	DSN string `yaml:"dsn"`

	// MaxOpenConns bounds the connection pool; the checker needs very few.
	MaxOpenConns int `yaml:"max_open_conns"`

	// ConnectTimeout bounds the initial connectivity probe.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// NewSyntaxChecker connects to Postgres and verifies connectivity.
func NewSyntaxChecker(cfg SyntaxCheckerConfig) (*SyntaxChecker, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 2
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &SyntaxChecker{db: db}, nil
}

// Validate prepares the statement and reports any parse or plan failure.
func (c *SyntaxChecker) Validate(ctx context.Context, sqlText string) error {
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return fmt.Errorf("generated SQL failed syntax check: %v", err)
	}
	return stmt.Close()
}

// Close releases the database connection pool.
func (c *SyntaxChecker) Close() error {
	return c.db.Close()
}
