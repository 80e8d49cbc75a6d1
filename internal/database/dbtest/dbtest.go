// Package dbtest opens throwaway SQLite stores for package tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"buffet-backend/internal/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// New returns a migrated in-memory store private to the test. The pool is
// limited to one connection so transactions are serialized the way row
// locks serialize them on Postgres.
func New(t testing.TB) *database.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:buffet_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := database.New(db, 5*time.Second)
	require.NoError(t, store.Migrate())

	t.Cleanup(func() { _ = store.Close() })
	return store
}
