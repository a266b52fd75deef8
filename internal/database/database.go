// Package database opens the repository.Store selected by configuration.
package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"boma/internal/config"
	"boma/internal/repository"
	"boma/internal/repository/memstore"
	"boma/internal/repository/mongostore"
	"boma/internal/repository/pgstore"
)

// Open connects to the configured backend. Postgres is migrated before use.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoName)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Driver).Str("database", cfg.MongoName).Msg("store connected")
		return store, nil

	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		store := pgstore.New(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		log.Info().Str("driver", cfg.Driver).Msg("store connected")
		return store, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memstore.New(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
