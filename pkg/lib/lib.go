package lib

import (
	"context"
	"fmt"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/conventions"
	"github.com/slok/dothis/internal/i18n"
	"github.com/slok/dothis/internal/log"
	"github.com/slok/dothis/internal/storage"
	"github.com/slok/dothis/internal/storage/file"
	"github.com/slok/dothis/internal/storage/memory"
	"github.com/slok/dothis/internal/storage/sqlite"
)

// StorageType identifies where the data is persisted.
type StorageType string

const (
	// StorageSQLite persists on a SQLite database.
	StorageSQLite StorageType = conventions.StorageSQLite
	// StorageFile persists on JSON files.
	StorageFile StorageType = conventions.StorageFile
	// StorageMemory doesn't persist anything, use it for testing.
	StorageMemory StorageType = conventions.StorageMemory
)

// Config configures the SDK client.
//
// All fields are optional, an empty Config{} uses the same data as the CLI.
type Config struct {
	// DataDir is the base directory for dothis data.
	// Default: ~/.dothis.
	DataDir string

	// Storage selects the persistence backend.
	// Default: [StorageSQLite].
	Storage StorageType

	// Lang is the language of the task progress messages.
	// Default: English.
	Lang string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		c.DataDir = conventions.DataDir()
	}

	if c.Storage == "" {
		c.Storage = StorageSQLite
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	svc     *randomizer.Service
	closeFn func() error
}

// New creates a new SDK client and loads the stored data.
//
// The caller must call [Client.Close] when done to release the storage.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	repo, closeFn, err := newRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	svc, err := randomizer.NewService(randomizer.ServiceConfig{
		Repository: repo,
		Messages:   i18n.New(cfg.Lang),
		Logger:     cfg.Logger,
	})
	if err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("could not create service: %w", err)
	}

	if err := svc.Load(ctx); err != nil {
		_ = closeFn()
		return nil, mapError(fmt.Errorf("could not load data: %w", err))
	}

	return &Client{svc: svc, closeFn: closeFn}, nil
}

func newRepository(ctx context.Context, cfg Config) (storage.Repository, func() error, error) {
	noClose := func() error { return nil }

	switch cfg.Storage {
	case StorageMemory:
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: cfg.Logger})
		return repo, noClose, err
	case StorageFile:
		repo, err := file.NewRepository(file.RepositoryConfig{
			Dir:    conventions.JSONDataDir(cfg.DataDir),
			Logger: cfg.Logger,
		})
		return repo, noClose, err
	case StorageSQLite:
		repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
			DBPath: conventions.DBPath(cfg.DataDir),
			Logger: cfg.Logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	return nil, nil, fmt.Errorf("unsupported storage %q: %w", cfg.Storage, ErrNotValid)
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	if c.closeFn != nil {
		return c.closeFn()
	}
	return nil
}
