package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/circuitbreaker"
	"github.com/Vijayesvar/PLEDG-MF/pkg/constants"
	"github.com/Vijayesvar/PLEDG-MF/pkg/migrations"
	"github.com/Vijayesvar/PLEDG-MF/pkg/retry"
	"github.com/caarlos0/env/v11"
	"gorm.io/gorm"
)

// StorageConfig selects where the waitlist collection lives.
type StorageConfig struct {
	Driver        string `env:"WAITLIST_STORAGE_DRIVER" envDefault:"file"`
	Key           string `env:"WAITLIST_STORAGE_KEY" envDefault:"pledg_waitlist_entries"`
	Dir           string `env:"WAITLIST_STORAGE_DIR" envDefault:"data"`
	SnowflakeNode int64  `env:"WAITLIST_SNOWFLAKE_NODE" envDefault:"1"`
	RetryAttempts int    `env:"WAITLIST_SLOT_RETRY_ATTEMPTS" envDefault:"3"`
	ExportDir     string `env:"WAITLIST_EXPORT_DIR" envDefault:"exports"`

	DatabaseDialect string `env:"WAITLIST_DATABASE_DIALECT" envDefault:"postgres"`
	SQLitePath      string `env:"WAITLIST_SQLITE_PATH" envDefault:"data/pledg.db"`

	BreakerFailureThreshold int           `env:"WAITLIST_BREAKER_FAILURES" envDefault:"5"`
	BreakerRecoveryTimeout  time.Duration `env:"WAITLIST_BREAKER_RECOVERY" envDefault:"30s"`
}

func LoadStorageConfig() (*StorageConfig, error) {
	cfg := &StorageConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse storage config: %w", err)
	}

	cfg.Driver = strings.ToLower(strings.TrimSpace(cfg.Driver))
	cfg.DatabaseDialect = strings.ToLower(strings.TrimSpace(cfg.DatabaseDialect))
	if cfg.DatabaseDialect == "sqlite" {
		cfg.DatabaseDialect = migrations.DialectSQLite
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (sc *StorageConfig) Validate() error {
	if !storage.IsSupportedDriver(sc.Driver) {
		return fmt.Errorf("unsupported WAITLIST_STORAGE_DRIVER %q (allowed: %s, %s, %s, %s)",
			sc.Driver, storage.DriverMemory, storage.DriverFile, storage.DriverDatabase, storage.DriverRedis)
	}
	if err := storage.ValidateKey(sc.Key); err != nil {
		return fmt.Errorf("invalid WAITLIST_STORAGE_KEY: %w", err)
	}
	if sc.SnowflakeNode < 0 || sc.SnowflakeNode > 1023 {
		return fmt.Errorf("WAITLIST_SNOWFLAKE_NODE must be within 0-1023, got %d", sc.SnowflakeNode)
	}
	if sc.RetryAttempts < 1 {
		return fmt.Errorf("WAITLIST_SLOT_RETRY_ATTEMPTS must be at least 1, got %d", sc.RetryAttempts)
	}
	if sc.Driver == storage.DriverDatabase {
		switch sc.DatabaseDialect {
		case migrations.DialectPostgres, migrations.DialectSQLite:
		default:
			return fmt.Errorf("unsupported WAITLIST_DATABASE_DIALECT %q", sc.DatabaseDialect)
		}
	}
	return nil
}

func (sc *StorageConfig) NeedsDatabase() bool {
	return sc.Driver == storage.DriverDatabase
}

func (sc *StorageConfig) NeedsCache() bool {
	return sc.Driver == storage.DriverRedis
}

// DBConfig is the database connection the database driver should open.
func (sc *StorageConfig) DBConfig() *DBConfig {
	cfg := defaultDBConfig()
	cfg.Dialect = sc.DatabaseDialect
	cfg.SQLitePath = sc.SQLitePath
	return cfg
}

// NewWaitlistSlot builds the configured slot. Remote backends are wrapped with
// retries and a circuit breaker.
func NewWaitlistSlot(logger *log.Logger, cfg *StorageConfig, db *gorm.DB, cache Cache) (storage.Slot, error) {
	if cfg == nil {
		cfg = &StorageConfig{Driver: storage.DriverMemory, Key: constants.DefaultWaitlistSlotKey, RetryAttempts: 1}
	}

	var (
		slot storage.Slot
		err  error
	)

	switch cfg.Driver {
	case storage.DriverMemory:
		logger.Warn("Waitlist storage is in memory; entries are lost on restart")
		slot = storage.NewMemorySlot(cfg.Key)
	case storage.DriverFile:
		slot, err = storage.NewFileSlot(cfg.Dir, cfg.Key)
	case storage.DriverDatabase:
		if db == nil {
			return nil, fmt.Errorf("waitlist storage driver %q needs a database", cfg.Driver)
		}
		slot, err = storage.NewDatabaseSlot(db, cfg.Key)
	case storage.DriverRedis:
		if cache == nil {
			return nil, fmt.Errorf("waitlist storage driver %q needs REDIS_HOST", cfg.Driver)
		}
		slot, err = storage.NewCacheSlot(cache, cfg.Key)
	default:
		return nil, fmt.Errorf("unsupported waitlist storage driver %q", cfg.Driver)
	}
	if err != nil {
		logger.Error("Failed to create waitlist slot", "driver", cfg.Driver, "error", err)
		return nil, err
	}

	if cfg.Driver == storage.DriverDatabase || cfg.Driver == storage.DriverRedis {
		slot = newResilientSlot(logger, cfg, slot)
	}

	logger.Info("Waitlist storage ready", "driver", cfg.Driver, "key", cfg.Key)
	return slot, nil
}

func newResilientSlot(logger *log.Logger, cfg *StorageConfig, inner storage.Slot) storage.Slot {
	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = cfg.RetryAttempts

	breakerConfig := circuitbreaker.DefaultConfig()
	if cfg.BreakerFailureThreshold > 0 {
		breakerConfig.FailureThreshold = cfg.BreakerFailureThreshold
	}
	if cfg.BreakerRecoveryTimeout > 0 {
		breakerConfig.RecoveryTimeout = cfg.BreakerRecoveryTimeout
	}
	breakerConfig.OnStateChange = func(from, to circuitbreaker.CircuitState) {
		logger.Warn("Waitlist storage circuit changed state", "from", from.String(), "to", to.String(), "slot", inner.Key())
	}

	return storage.NewResilientSlot(inner, retry.NewExponentialBackoff(retryConfig), circuitbreaker.NewCircuitBreaker(breakerConfig))
}
