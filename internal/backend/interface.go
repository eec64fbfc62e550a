package backend

import (
	"context"

	"notare/internal/core"
	"notare/internal/journal"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the opened store and what the binaries need around it.
type BackendResult struct {
	Store journal.Store
	// Ping reports whether the store is reachable. Nil for backends that
	// cannot fail.
	Ping func(ctx context.Context) error
	// ChatHistory is the seeded conversation, empty when nothing was seeded.
	ChatHistory []core.ChatMessage
	// Seeded is true when the demo or SEED_FILE dataset was loaded on open.
	Seeded  bool
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// SeedFile overrides the embedded demo dataset. Seeding happens when
	// SeedDemo is set or SeedFile is given, and only into an empty store.
	SeedFile string
	SeedDemo bool
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
