// Package storetest opens throwaway in-memory stores for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/quickpost/store"
)

// OpenDB returns a migrated, private in-memory SQLite database that is closed
// when the test ends. The pool is pinned to one connection so concurrent
// writers queue instead of hitting SQLITE_LOCKED.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(store.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Open returns a Store over OpenDB.
func Open(t testing.TB) *store.Store {
	t.Helper()
	return store.New(OpenDB(t))
}
