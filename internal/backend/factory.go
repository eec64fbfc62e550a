package backend

import (
	"context"
	"fmt"
	"log/slog"

	"notare/internal/journal"
	"notare/internal/journal/memory"
	"notare/internal/seed"
	"notare/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	result := &BackendResult{
		Store:   repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}

	if config.SeedDemo || config.SeedFile != "" {
		empty, err := repo.Empty(ctx)
		if err != nil {
			repo.Close()
			return nil, err
		}
		if empty {
			if err := f.seed(ctx, repo, config, result); err != nil {
				repo.Close()
				return nil, err
			}
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"seeded", result.Seeded)
	return result, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := memory.New()
	result := &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}
	if config.SeedDemo || config.SeedFile != "" {
		if err := f.seed(ctx, store, config, result); err != nil {
			return nil, err
		}
	}

	f.logger.Info("Initialized memory backend", "seeded", result.Seeded)
	return result, nil
}

func (f *DefaultFactory) seed(ctx context.Context, store journal.Store, config Config, result *BackendResult) error {
	ds, err := seed.Load(config.SeedFile)
	if err != nil {
		return err
	}
	if err := seed.Apply(ctx, store, ds); err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	result.ChatHistory = ds.Chat
	result.Seeded = true

	source := config.SeedFile
	if source == "" {
		source = "embedded"
	}
	f.logger.Info("Seeded journal",
		"source", source,
		"tasks", len(ds.Tasks),
		"moods", len(ds.Moods),
		"entries", len(ds.Entries))
	return nil
}
