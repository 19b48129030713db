package backend

import (
	"context"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/cache"
	"carteira/internal/store"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result is the assembled store plus the optional collaborators the
// services share with it. Snapshots and Events are nil when disabled.
type Result struct {
	Store     store.Store
	Snapshots *cache.SnapshotCache
	Events    *amqp.Client
	Cleanup   CleanupFunc

	// Ping checks the underlying database; nil for the memory backend.
	Ping func(ctx context.Context) error
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Change events, disabled when AMQPURL is empty
	AMQPURL        string
	AMQPExchange   string
	AMQPQueue      string
	AMQPRoutingKey string

	// Snapshot cache, disabled when CacheSize is 0
	CacheSize int
	CacheTTL  time.Duration
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
