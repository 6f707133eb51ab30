// Package dbtest provides an in-memory database for package tests.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"recipes/internal/db"
)

// New returns a migrated in-memory sqlite database that lives for the test.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	gormDB, err := db.Open(db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)", "silent")
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}
