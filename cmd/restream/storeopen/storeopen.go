// Package storeopen opens the transcript store selected by command flags and
// config.
package storeopen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/restream/pkg/dotdir"
	"github.com/papercomputeco/restream/pkg/logger"
	"github.com/papercomputeco/restream/pkg/storage"
	"github.com/papercomputeco/restream/pkg/storage/inmemory"
	"github.com/papercomputeco/restream/pkg/storage/postgres"
	"github.com/papercomputeco/restream/pkg/storage/sqlite"
)

// DefaultSQLiteFile is the database created in the .restream/ directory when
// no path is configured.
const DefaultSQLiteFile = "restream.sqlite"

// Options selects a store. PostgresDSN wins over SQLitePath.
type Options struct {
	PostgresDSN string
	SQLitePath  string

	// ConfigDir overrides .restream/ resolution for the default SQLite path.
	ConfigDir string

	// Persistent falls back to the default SQLite file instead of memory
	// when neither PostgresDSN nor SQLitePath is set.
	Persistent bool

	Logger *slog.Logger
}

// ResolveSQLitePath returns override when set, otherwise the default
// database inside the resolved .restream/ directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	path, err := dotdir.NewManager().File(configDir, DefaultSQLiteFile)
	if err != nil {
		return "", fmt.Errorf("resolving default database: %w", err)
	}
	return path, nil
}

// Open returns the driver described by opts. The caller closes it.
func Open(ctx context.Context, opts Options) (storage.Driver, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	if opts.PostgresDSN != "" {
		driver, err := postgres.NewDriver(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil
	}

	if opts.SQLitePath == "" && !opts.Persistent {
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}

	path, err := ResolveSQLitePath(opts.SQLitePath, opts.ConfigDir)
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.NewSQLiteDriver(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
	}
	log.Info("using SQLite storage", "path", path)
	return driver, nil
}
