package config

import (
	"path/filepath"
	"testing"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/models"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStorageConfig_Defaults(t *testing.T) {
	cfg, err := LoadStorageConfig()
	require.NoError(t, err)

	assert.Equal(t, storage.DriverFile, cfg.Driver)
	assert.Equal(t, "pledg_waitlist_entries", cfg.Key)
	assert.Equal(t, "data", cfg.Dir)
	assert.Equal(t, int64(1), cfg.SnowflakeNode)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.False(t, cfg.NeedsDatabase())
}

func TestLoadStorageConfig_FromEnv(t *testing.T) {
	t.Setenv("WAITLIST_STORAGE_DRIVER", " Database ")
	t.Setenv("WAITLIST_DATABASE_DIALECT", "sqlite")
	t.Setenv("WAITLIST_SNOWFLAKE_NODE", "42")
	t.Setenv("WAITLIST_BREAKER_RECOVERY", "5s")

	cfg, err := LoadStorageConfig()
	require.NoError(t, err)

	assert.Equal(t, storage.DriverDatabase, cfg.Driver)
	assert.Equal(t, migrations.DialectSQLite, cfg.DatabaseDialect)
	assert.Equal(t, int64(42), cfg.SnowflakeNode)
	assert.True(t, cfg.NeedsDatabase())
	assert.Equal(t, migrations.DialectSQLite, cfg.DBConfig().Dialect)
}

func TestLoadStorageConfig_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":  {"WAITLIST_STORAGE_DRIVER": "s3"},
		"key with slash":  {"WAITLIST_STORAGE_KEY": "a/b"},
		"node too large":  {"WAITLIST_SNOWFLAKE_NODE": "1024"},
		"node not number": {"WAITLIST_SNOWFLAKE_NODE": "one"},
		"zero attempts":   {"WAITLIST_SLOT_RETRY_ATTEMPTS": "0"},
		"unknown dialect": {"WAITLIST_STORAGE_DRIVER": "database", "WAITLIST_DATABASE_DIALECT": "mysql"},
	}

	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := LoadStorageConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewWaitlistSlot(t *testing.T) {
	logger := log.NewDiscardLogger()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		slot, err := NewWaitlistSlot(logger, &StorageConfig{Driver: storage.DriverFile, Dir: dir, Key: "entries", RetryAttempts: 1}, nil, nil)
		require.NoError(t, err)

		fileSlot, ok := slot.(*storage.FileSlot)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, "entries.json"), fileSlot.Path())
	})

	t.Run("memory", func(t *testing.T) {
		slot, err := NewWaitlistSlot(logger, &StorageConfig{Driver: storage.DriverMemory, Key: "entries", RetryAttempts: 1}, nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &storage.MemorySlot{}, slot)
	})

	t.Run("database without db", func(t *testing.T) {
		_, err := NewWaitlistSlot(logger, &StorageConfig{Driver: storage.DriverDatabase, Key: "entries", RetryAttempts: 1}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("redis without cache", func(t *testing.T) {
		_, err := NewWaitlistSlot(logger, &StorageConfig{Driver: storage.DriverRedis, Key: "entries", RetryAttempts: 1}, nil, nil)
		assert.Error(t, err)
	})

	t.Run("sqlite database is wrapped", func(t *testing.T) {
		db, err := NewDatabase(logger, &DBConfig{Dialect: migrations.DialectSQLite, SQLitePath: filepath.Join(t.TempDir(), "pledg.db")})
		require.NoError(t, err)
		t.Cleanup(func() { CloseDatabase(db, logger) })
		require.NoError(t, AutoMigrate(logger, db, models.ModelRegistry...))

		slot, err := NewWaitlistSlot(logger, &StorageConfig{Driver: storage.DriverDatabase, Key: "entries", RetryAttempts: 2}, db, nil)
		require.NoError(t, err)
		assert.IsType(t, &storage.ResilientSlot{}, slot)
		assert.Equal(t, "entries", slot.Key())
	})
}
