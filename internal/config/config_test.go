package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:1323", cfg.HTTPListen())
		assert.Equal(t, "0.0.0.0:9000", cfg.GRPCListen())
		assert.Equal(t, DBDriverPostgres, cfg.DBDriver)
		assert.Equal(t, StorageLocal, cfg.StorageBackend)
		assert.Equal(t, "/media/", cfg.MediaURL)
		assert.Equal(t, 10, cfg.BcryptCost)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RECIPE_PORT", "8080")
		t.Setenv("RECIPE_DB_DRIVER", "sqlite")
		t.Setenv("RECIPE_RATE_LIMIT", "60")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, DBDriverSQLite, cfg.DBDriver)
		assert.Equal(t, 60, cfg.RateLimit)
	})

	t.Run("invalid ssl mode", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RECIPE_DB_SSL_MODE", "verify-full")

		_, err := NewConfig()
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("RECIPE_STORAGE_BACKEND", "s3")

		_, err := NewConfig()
		assert.Error(t, err)
	})
}
