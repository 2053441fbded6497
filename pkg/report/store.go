// Package report persists finished research reports. The engine hands off
// a finished result and never touches file paths, key naming, or schema;
// those live entirely in the store backends here.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Common errors for storage operations.
var (
	// ErrNotFound is returned when a report doesn't exist.
	ErrNotFound = errors.New("report not found")
	// ErrStoreClosed is returned when operating on a closed store.
	ErrStoreClosed = errors.New("report store is closed")
)

// Record is one persisted research report.
type Record struct {
	ID               string    `json:"id"`
	Topic            string    `json:"topic"`
	StrategyID       int       `json:"strategy_id"`
	StrategyName     string    `json:"strategy_name"`
	ReportText       string    `json:"report_text"`
	QualityAggregate float64   `json:"quality_aggregate"`
	IterationsUsed   int       `json:"iterations_used"`
	AgentTeam        []string  `json:"agent_team"`
	BelowThreshold   bool      `json:"below_threshold"`
	PartialConsensus bool      `json:"partial_consensus"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store abstracts report persistence.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save persists a record, overwriting any record with the same ID.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records newest first, capped at limit (0 = all).
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "memory", "sqlite", or "redis".
	Backend string

	// Path is the database file for the sqlite backend.
	Path string

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string
}

// Open creates the store named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	case "redis":
		return NewRedisStore(RedisConfig{Addr: cfg.RedisAddr})
	default:
		return nil, fmt.Errorf("unknown report store backend %q", cfg.Backend)
	}
}
