package database

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boma/internal/config"
	"boma/internal/repository/memstore"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory}, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, zerolog.Nop())
	assert.ErrorContains(t, err, "sqlite")
}

func TestNewPostgresPoolRejectsBadDSN(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), config.DatabaseConfig{PostgresDSN: "postgres://%zz"})
	assert.ErrorContains(t, err, "parse dsn")
}
