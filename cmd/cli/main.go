package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config"
	"github.com/Vijayesvar/PLEDG-MF/domain"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/migrations"
	"github.com/Vijayesvar/PLEDG-MF/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		if err := runMigrate(logger); err != nil {
			logger.Error("Database migration failed", "error", err.Error())
			os.Exit(1)
		}
		logger.Info("Database migrations completed")

	case "export", "stats", "clear":
		appConfig, err := config.LoadStorageConfiguration(logger, false)
		if err != nil {
			logger.Error("Failed to open waitlist storage", "error", err.Error())
			os.Exit(1)
		}
		defer appConfig.Cleanup()

		store, err := domain.NewWaitlistStore(appConfig)
		if err != nil {
			logger.Error("Failed to create waitlist store", "error", err.Error())
			appConfig.Cleanup()
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cmd := &command{store: store, stdout: os.Stdout, now: time.Now, exportDir: appConfig.Storage.ExportDir}
		if err := cmd.run(ctx, args[0], args[1:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			cancel()
			appConfig.Cleanup()
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMigrate(logger *log.Logger) error {
	storageCfg, err := config.LoadStorageConfig()
	if err != nil {
		return err
	}
	if storageCfg.Driver != storage.DriverDatabase {
		logger.Warn("WAITLIST_STORAGE_DRIVER is not database; migrating anyway", "driver", storageCfg.Driver)
	}

	db, err := config.NewDatabase(logger, storageCfg.DBConfig())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get SQL DB instance: %w", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("Failed to close SQL DB after migration", "error", err.Error())
		}
	}()

	migrationsDir := utils.GetEnvTrimmedOrDefault("MIGRATIONS_DIR", "migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	return migrations.Up(ctx, sqlDB, migrations.Config{
		Dir:     migrationsDir,
		Dialect: storageCfg.DatabaseDialect,
		Logger:  logger,
	})
}

func printUsage() {
	fmt.Println("Usage: cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate                               Run database migrations for the waitlist slot table")
	fmt.Println("  export [--format json|csv] [--out p]  Write a waitlist snapshot (--out - for stdout)")
	fmt.Println("  stats                                 Print waitlist statistics as JSON")
	fmt.Println("  clear --yes                           Remove every waitlist entry")
}
