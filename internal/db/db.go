package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipes/internal/config"
	"recipes/internal/model"
)

// Supported values for the driver argument of Open.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Models lists every persisted entity in dependency order.
var Models = []interface{}{
	&model.User{},
	&model.Tag{},
	&model.Ingredient{},
	&model.Recipe{},
}

// Open returns a connected GORM DB instance for the given driver.
func Open(driver, dsn, logLevel string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(parseLogLevel(logLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	return db, nil
}

// WaitFor calls open until it returns a database that answers a ping, trying
// at most retries times and sleeping interval between attempts.
func WaitFor(ctx context.Context, log *slog.Logger, retries int, interval time.Duration, open func() (*gorm.DB, error)) (*gorm.DB, error) {
	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		db, err := open()
		if err == nil {
			err = ping(ctx, db)
			if err == nil {
				log.Info("database available", "attempt", attempt)
				return db, nil
			}
			closeDB(db)
		}
		lastErr = err
		log.Warn("database unavailable, waiting", "attempt", attempt, "retries", retries, "error", err)

		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("database unavailable after %d attempts: %w", retries, lastErr)
}

// Connect waits for the configured database and brings its schema up to
// date. With cfg.ResetDB every table is dropped first.
func Connect(ctx context.Context, cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	gormDB, err := WaitFor(ctx, log, cfg.DBWaitRetries, cfg.DBWaitInterval, func() (*gorm.DB, error) {
		return Open(cfg.DBDriver, cfg.DatabaseDSN, cfg.DBLogLevel)
	})
	if err != nil {
		return nil, err
	}

	if cfg.ResetDB {
		log.Warn("RESET_DB set, dropping all tables")
		if err := Reset(gormDB); err != nil {
			closeDB(gormDB)
			return nil, err
		}
	}
	if err := Migrate(gormDB); err != nil {
		closeDB(gormDB)
		return nil, err
	}
	return gormDB, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Reset drops every table, association tables included.
func Reset(db *gorm.DB) error {
	tables := []interface{}{"recipe_tags", "recipe_ingredients"}
	for i := len(Models) - 1; i >= 0; i-- {
		tables = append(tables, Models[i])
	}
	for _, table := range tables {
		if err := db.Migrator().DropTable(table); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}
