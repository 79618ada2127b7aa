package backend

import (
	"context"
	"fmt"

	"tracker/internal/config"
	"tracker/internal/ledger"
	"tracker/internal/log"
	"tracker/internal/storage"
	"tracker/internal/storage/postgres"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// New builds the persister selected by the application config.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*BackendResult, error) {
	bc, err := FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewFactory(logger).CreateBackend(ctx, bc)
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(ctx)
	case FileBackend:
		return f.createFileBackend(ctx, config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context) (*BackendResult, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend", log.FieldBackend, MemoryBackend)
	return &BackendResult{Persister: storage.NewMemoryPersister(ledger.Snapshot{})}, nil
}

func (f *DefaultFactory) createFileBackend(ctx context.Context, config Config) (*BackendResult, error) {
	p, err := storage.NewFilePersister(config.DataDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized file backend",
		log.FieldBackend, FileBackend,
		"data_directory", config.DataDirectory)

	return &BackendResult{Persister: p}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	p, err := storage.NewSQLitePersister(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldBackend, SQLiteBackend,
		"db_path", config.SQLiteDBPath)

	return &BackendResult{Persister: p, Cleanup: p.Close}, nil
}

func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	p, err := postgres.Connect(ctx, config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres backend: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized Postgres backend", log.FieldBackend, PostgresBackend)

	return &BackendResult{Persister: p, Cleanup: p.Close}, nil
}
