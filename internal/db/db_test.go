package db

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipes/internal/config"
	"recipes/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "dsn", "silent")
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}

func TestWaitFor_RetriesUntilAvailable(t *testing.T) {
	calls := 0
	open := func() (*gorm.DB, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return Open(DriverSQLite, "file::memory:", "silent")
	}

	db, err := WaitFor(context.Background(), discardLogger(), 5, time.Millisecond, open)
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, 3, calls)
}

func TestWaitFor_GivesUp(t *testing.T) {
	calls := 0
	open := func() (*gorm.DB, error) {
		calls++
		return nil, errors.New("connection refused")
	}

	_, err := WaitFor(context.Background(), discardLogger(), 2, time.Millisecond, open)
	assert.ErrorContains(t, err, "database unavailable after 2 attempts")
	assert.Equal(t, 2, calls)
}

func TestMigrateAndReset(t *testing.T) {
	db, err := Open(DriverSQLite, "file::memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "recipe_ingredients"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, Reset(db))
	assert.False(t, db.Migrator().HasTable("recipes"))
	assert.False(t, db.Migrator().HasTable("recipe_tags"))
}

func TestConnect(t *testing.T) {
	cfg := &config.Config{
		DBDriver:      DriverSQLite,
		DatabaseDSN:   filepath.Join(t.TempDir(), "recipes.db"),
		DBLogLevel:    "silent",
		DBWaitRetries: 1,
	}
	ctx := context.Background()

	db, err := Connect(ctx, cfg, discardLogger())
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{Email: "a@example.com", PasswordHash: "x"}).Error)
	closeDB(db)

	db, err = Connect(ctx, cfg, discardLogger())
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	closeDB(db)

	cfg.ResetDB = true
	db, err = Connect(ctx, cfg, discardLogger())
	require.NoError(t, err)
	defer closeDB(db)
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
