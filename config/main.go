package config

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/models"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/constants"
	"gorm.io/gorm"
)

type ApplicationConfig struct {
	// DB is nil unless the waitlist uses the database driver.
	DB              *gorm.DB
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	Storage         *StorageConfig
	Slot            storage.Slot
	TracingShutdown func(context.Context) error
}

type AppConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
}

func NewAppConfig() *AppConfig {
	config := &AppConfig{
		RateLimitRequests: constants.DefaultRateLimitRequests,
		RateLimitWindow:   constants.DefaultRateLimitWindow(),
		RequestTimeout:    30 * time.Second, // Default request timeout
	}

	// Override from environment variables
	if reqStr := os.Getenv("RATE_LIMIT_REQUESTS"); reqStr != "" {
		if parsed, err := strconv.Atoi(reqStr); err == nil && parsed > 0 {
			config.RateLimitRequests = parsed
		}
	}

	if winStr := os.Getenv("RATE_LIMIT_WINDOW"); winStr != "" {
		if parsed, err := time.ParseDuration(winStr); err == nil && parsed > 0 {
			config.RateLimitWindow = parsed
		}
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		if parsed, err := time.ParseDuration(timeoutStr); err == nil && parsed > 0 {
			config.RequestTimeout = parsed
		}
	}

	return config
}

func (ac *ApplicationConfig) Cleanup() {
	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
	}

	if ac.DB != nil {
		CloseDatabase(ac.DB, ac.Logger)
	}

	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.Cache != nil {
		CloseCache(ac.Cache, ac.Logger)
	}

	ac.Logger.Info("Application cleanup completed")
}

// LoadStorageConfiguration opens only what the waitlist slot needs. The CLI uses
// it directly; the server builds on it.
func LoadStorageConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	storageCfg, err := LoadStorageConfig()
	if err != nil {
		logger.Error("Invalid waitlist storage configuration", "error", err)
		return nil, err
	}

	appConfig := &ApplicationConfig{
		Logger:  logger,
		Config:  NewAppConfig(),
		Storage: storageCfg,
	}

	if storageCfg.NeedsDatabase() {
		db, err := NewDatabase(logger, storageCfg.DBConfig())
		if err != nil {
			return nil, err
		}
		appConfig.DB = db

		if autoMigrate {
			if err := AutoMigrate(logger, db, models.ModelRegistry...); err != nil {
				appConfig.Cleanup()
				return nil, err
			}
		}
	} else if autoMigrate {
		logger.Info("Waitlist storage does not use a database; --auto-migrate ignored", "driver", storageCfg.Driver)
	}

	cacheCfg := NewCacheConfig()
	if storageCfg.NeedsCache() {
		cache, err := cacheCfg.NewCache(logger)
		if err != nil {
			appConfig.Cleanup()
			return nil, err
		}
		appConfig.Cache = cache
	} else {
		appConfig.Cache = cacheCfg.NewCacheOrNil(logger)
	}

	slot, err := NewWaitlistSlot(logger, storageCfg, appConfig.DB, appConfig.Cache)
	if err != nil {
		appConfig.Cleanup()
		return nil, err
	}
	appConfig.Slot = slot

	return appConfig, nil
}

func LoadApplicationConfiguration(logger *log.Logger, autoMigrate bool) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	if autoMigrate {
		appEnv := GetAppEnv()
		if err := ValidateAutoMigrateAllowed(appEnv); err != nil {
			return nil, err
		}
		if appEnv == "" {
			logger.Warn("APP_ENV not set; allowing --auto-migrate as development")
		}
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	appConfig, err := LoadStorageConfiguration(logger, autoMigrate)
	if err != nil {
		if tracingShutdown != nil {
			_ = tracingShutdown(context.Background())
		}
		return nil, err
	}
	appConfig.TracingShutdown = tracingShutdown

	var routerCache router.Cache
	if appConfig.Cache != nil {
		routerCache = appConfig.Cache
	}

	appConfig.RouterService = router.CreateRouterService(logger, routerCache, &router.RouterConfig{
		RateLimitRequests: appConfig.Config.RateLimitRequests,
		RateLimitWindow:   appConfig.Config.RateLimitWindow,
		RequestTimeout:    appConfig.Config.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully")

	return appConfig, nil
}
